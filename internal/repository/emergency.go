package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/antonD24/ELDI/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const emergencyColumns = `
	id,
	incident_number,
	subject_id,
	status,
	content,
	latitude,
	longitude,
	responder_latitude,
	responder_longitude,
	profile,
	created_at,
	updated_at`

type EmergencyRepository struct {
	db *pgxpool.Pool
}

func NewEmergencyRepository(db *pgxpool.Pool) service.EmergencyRepository {
	return &EmergencyRepository{
		db: db,
	}
}

// Create создает новую запись о вызове в бд.
// Второй активный вызов субъекта отклоняется частичным уникальным индексом.
func (r *EmergencyRepository) Create(ctx context.Context, rec *models.EmergencyRecord) error {
	profile, err := json.Marshal(rec.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile snapshot: %w", err)
	}
	query := `
		INSERT INTO emergencies (id, incident_number, subject_id, status, content, latitude, longitude, profile, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at, updated_at;
	`
	err = r.db.QueryRow(ctx, query,
		rec.ID,
		rec.IncidentNumber,
		rec.SubjectID,
		rec.Status,
		rec.Content,
		rec.Location.Lat,
		rec.Location.Long,
		profile,
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return classify("create emergency", err)
	}
	return nil
}

// GetByID возвращает вызов по его UUID
func (r *EmergencyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EmergencyRecord, error) {
	query := `SELECT` + emergencyColumns + `
		FROM emergencies
		WHERE id = $1;
	`
	rec, err := scanEmergency(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("emergency with id %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get emergency by id: %w", err)
	}
	return rec, nil
}

// List возвращает вызовы по фильтру: равенство по субъекту и OR по статусам
func (r *EmergencyRepository) List(ctx context.Context, filter models.EmergencyFilter) ([]*models.EmergencyRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		where = append(where, fmt.Sprintf("subject_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, statusStrings(filter.Statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	query := `SELECT` + emergencyColumns + `
		FROM emergencies`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY updated_at DESC;"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list emergencies: %w", err)
	}
	return collectEmergencies(rows)
}

// ListRecent возвращает вызовы с пагинацией для диспетчеров
func (r *EmergencyRepository) ListRecent(ctx context.Context, statuses []models.Status, page, pageSize int) ([]*models.EmergencyRecord, error) {
	// рассчитываем смещение
	offset := (page - 1) * pageSize

	query := `SELECT` + emergencyColumns + `
		FROM emergencies
		WHERE cardinality($1::text[]) = 0 OR status = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, statusStrings(statuses), pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent emergencies: %w", err)
	}
	return collectEmergencies(rows)
}

// Update применяет частичное обновление и возвращает запись после него.
// Запись в конечном статусе не меняется: условие проверяется в том же UPDATE.
func (r *EmergencyRepository) Update(ctx context.Context, id uuid.UUID, patch models.EmergencyPatch) (*models.EmergencyRecord, error) {
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	var lat, long *float64
	if patch.ResponderLocation != nil {
		lat = &patch.ResponderLocation.Lat
		long = &patch.ResponderLocation.Long
	}

	query := `
		UPDATE emergencies SET
			status = COALESCE($1, status),
			responder_latitude = COALESCE($2, responder_latitude),
			responder_longitude = COALESCE($3, responder_longitude),
			updated_at = NOW()
		WHERE id = $4 AND status <> ALL($5)
		RETURNING` + emergencyColumns + `;
	`
	rec, err := scanEmergency(r.db.QueryRow(ctx, query, status, lat, long, id, statusStrings(models.TerminalStatuses)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.explainNoUpdate(ctx, id)
		}
		return nil, classify("update emergency", err)
	}
	return rec, nil
}

// explainNoUpdate различает отсутствующую и уже завершенную запись.
// Конечный статус не меняется, поэтому повторное чтение согласовано с UPDATE.
func (r *EmergencyRepository) explainNoUpdate(ctx context.Context, id uuid.UUID) error {
	var current string
	err := r.db.QueryRow(ctx, `SELECT status FROM emergencies WHERE id = $1;`, id).Scan(&current)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return classify("update emergency", err)
	}
	return noUpdateError(id, err == nil, models.Status(current))
}

func noUpdateError(id uuid.UUID, found bool, current models.Status) error {
	if !found {
		return fmt.Errorf("emergency with id %s not found for update: %w", id, service.ErrNotFound)
	}
	return fmt.Errorf("emergency with id %s is %s: %w", id, current, service.ErrFinalized)
}

func scanEmergency(row pgx.Row) (*models.EmergencyRecord, error) {
	rec := &models.EmergencyRecord{}
	var (
		status            string
		profile           []byte
		respLat, respLong *float64
	)
	err := row.Scan(
		&rec.ID,
		&rec.IncidentNumber,
		&rec.SubjectID,
		&status,
		&rec.Content,
		&rec.Location.Lat,
		&rec.Location.Long,
		&respLat,
		&respLong,
		&profile,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = models.Status(status)
	if respLat != nil && respLong != nil {
		rec.ResponderLocation = &models.Location{Lat: *respLat, Long: *respLong}
	}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &rec.Profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile snapshot: %w", err)
		}
	}
	return rec, nil
}

func collectEmergencies(rows pgx.Rows) ([]*models.EmergencyRecord, error) {
	defer rows.Close()

	records := make([]*models.EmergencyRecord, 0)
	for rows.Next() {
		rec, err := scanEmergency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan emergency row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return records, nil
}

func statusStrings(statuses []models.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// classify переводит ошибки postgres в ошибки сервиса
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("failed to %s: %w", op, service.ErrDuplicate)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
