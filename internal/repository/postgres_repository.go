package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/call-console/internal/domain"
)

const callColumns = `id, started_at, ended_at, status, direction, from_number, to_number,
        agent_name, queue_or_dn, ticket_id, has_ticket_update, notes`

type postgresCallRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCallRepository instantiates the pgx-backed repository.
func NewPostgresCallRepository(pool *pgxpool.Pool) CallRepository {
	return &postgresCallRepository{pool: pool}
}

func (r *postgresCallRepository) List(ctx context.Context, filter Filter) (Page, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(from_number) LIKE %[1]s OR LOWER(to_number) LIKE %[1]s OR LOWER(COALESCE(agent_name,'')) LIKE %[1]s OR LOWER(COALESCE(ticket_id,'')) LIKE %[1]s)",
			placeholder))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		clauses = append(clauses, fmt.Sprintf("started_at >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		clauses = append(clauses, fmt.Sprintf("started_at <= $%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM calls WHERE " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	page := normalizePage(filter.Page)
	args = append(args, PageSize, (page-1)*PageSize)
	query := fmt.Sprintf(`SELECT %s FROM calls WHERE %s ORDER BY started_at DESC LIMIT $%d OFFSET $%d`,
		callColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	items := []domain.Call{}
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return Page{}, err
		}
		items = append(items, call)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	return Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: totalPages(total),
	}, nil
}

func (r *postgresCallRepository) GetByID(ctx context.Context, id string) (domain.Call, error) {
	query := fmt.Sprintf("SELECT %s FROM calls WHERE id=$1", callColumns)
	call, err := scanCall(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Call{}, ErrCallNotFound
		}
		return domain.Call{}, err
	}
	return call, nil
}

func (r *postgresCallRepository) Transcript(ctx context.Context, callID string) ([]domain.TranscriptSegment, error) {
	const query = `
        SELECT id, call_id, speaker, text, is_final, timestamp
        FROM transcript_segments WHERE call_id=$1 ORDER BY timestamp ASC`
	rows, err := r.pool.Query(ctx, query, callID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	segments := []domain.TranscriptSegment{}
	for rows.Next() {
		var segment domain.TranscriptSegment
		if err := rows.Scan(
			&segment.ID,
			&segment.CallID,
			&segment.Speaker,
			&segment.Text,
			&segment.IsFinal,
			&segment.Timestamp,
		); err != nil {
			return nil, err
		}
		segments = append(segments, segment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return segments, nil
}

func (r *postgresCallRepository) SaveNotes(ctx context.Context, callID, notes string) error {
	const query = `UPDATE calls SET notes=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, notes, callID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCallNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCall(row rowScanner) (domain.Call, error) {
	var call domain.Call
	if err := row.Scan(
		&call.ID,
		&call.StartedAt,
		&call.EndedAt,
		&call.Status,
		&call.Direction,
		&call.FromNumber,
		&call.ToNumber,
		&call.AgentName,
		&call.QueueOrDN,
		&call.TicketID,
		&call.HasTicketUpdate,
		&call.Notes,
	); err != nil {
		return domain.Call{}, err
	}
	return call, nil
}
