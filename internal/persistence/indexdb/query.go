package indexdb

import (
	"context"
	"database/sql"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/gameaction"
)

// ActionRow is one indexed action outcome.
type ActionRow struct {
	ID     int64               `json:"id"`
	Tick   uint64              `json:"tick"`
	Player gameaction.PlayerID `json:"player"`
	Type   gameaction.Type     `json:"type"`
	Status string              `json:"status"`
	Cost   finance.Money       `json:"cost"`
}

// ActionsByPlayer returns a player's most recent actions, newest first.
func (s *SQLiteIndex) ActionsByPlayer(ctx context.Context, player gameaction.PlayerID, limit int) ([]ActionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,tick,player,type,status,cost FROM actions WHERE player=? ORDER BY id DESC LIMIT ?`,
		int64(player), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ActionRow
	for rows.Next() {
		var r ActionRow
		var tick, p, cost int64
		var typ string
		if err := rows.Scan(&r.ID, &tick, &p, &typ, &r.Status, &cost); err != nil {
			return nil, err
		}
		r.Tick, r.Player, r.Type, r.Cost = uint64(tick), gameaction.PlayerID(p), gameaction.Type(typ), finance.Money(cost)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SpendByType sums the cost of successful actions per action type.
func (s *SQLiteIndex) SpendByType(ctx context.Context) (map[gameaction.Type]finance.Money, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, SUM(cost) FROM actions WHERE status='ok' GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[gameaction.Type]finance.Money{}
	for rows.Next() {
		var typ string
		var sum int64
		if err := rows.Scan(&typ, &sum); err != nil {
			return nil, err
		}
		out[gameaction.Type(typ)] = finance.Money(sum)
	}
	return out, rows.Err()
}

// LatestSnapshot returns the newest recorded snapshot, if any.
func (s *SQLiteIndex) LatestSnapshot(ctx context.Context) (SnapshotRow, bool, error) {
	var r SnapshotRow
	var tick, cash int64
	err := s.db.QueryRowContext(ctx,
		`SELECT tick,path,digest,rides,elements,cash FROM snapshots ORDER BY tick DESC LIMIT 1`).
		Scan(&tick, &r.Path, &r.Digest, &r.Rides, &r.Elements, &cash)
	if err == sql.ErrNoRows {
		return SnapshotRow{}, false, nil
	}
	if err != nil {
		return SnapshotRow{}, false, err
	}
	r.Tick, r.Cash = uint64(tick), finance.Money(cash)
	return r, true, nil
}
