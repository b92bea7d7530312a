package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chief_monitor/internal/models"
)

type DeliverySQL struct {
	db *sql.DB
	d  Dialect
}

func NewDeliverySQL(db *sql.DB, d Dialect) *DeliverySQL { return &DeliverySQL{db: db, d: d} }

var _ DeliveryRepo = (*DeliverySQL)(nil)

const (
	insertDeliverySQL = `INSERT INTO alert_deliveries (alert_id, channel, attempted_at, status, response_code, error_text) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`

	selectDeliveriesSQL = `SELECT id, alert_id, channel, attempted_at, status, response_code, error_text FROM alert_deliveries WHERE alert_id = ? ORDER BY id`
)

// Record appends a delivery attempt and returns its id.
func (r *DeliverySQL) Record(ctx context.Context, d models.AlertDelivery) (int64, error) {
	if d.AttemptedAt.IsZero() {
		d.AttemptedAt = time.Now()
	}
	var code any
	if d.ResponseCode != nil {
		code = *d.ResponseCode
	}
	var id int64
	err := r.db.QueryRowContext(ctx, r.d.Rebind(insertDeliverySQL),
		d.AlertID, d.Channel, formatTime(d.AttemptedAt), d.Status, code, nullString(d.ErrorText),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert delivery for alert %d: %w", d.AlertID, err)
	}
	return id, nil
}

func (r *DeliverySQL) ListForAlert(ctx context.Context, alertID int64) ([]models.AlertDelivery, error) {
	rows, err := r.db.QueryContext(ctx, r.d.Rebind(selectDeliveriesSQL), alertID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries for alert %d: %w", alertID, err)
	}
	defer rows.Close()

	var out []models.AlertDelivery
	for rows.Next() {
		var (
			d           models.AlertDelivery
			attemptedAt string
			code        sql.NullInt64
			errText     sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.AlertID, &d.Channel, &attemptedAt, &d.Status, &code, &errText); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		if d.AttemptedAt, err = parseTime(attemptedAt); err != nil {
			return nil, err
		}
		if code.Valid {
			v := int(code.Int64)
			d.ResponseCode = &v
		}
		d.ErrorText = errText.String
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deliveries for alert %d: %w", alertID, err)
	}
	return out, nil
}
