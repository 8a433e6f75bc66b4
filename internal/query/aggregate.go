package query

import "tasknest/internal/models"

// Aggregate computes the statistics of board over the non-archived tasks that belong to it.
func (e *Engine) Aggregate(board models.Board, tasks []models.Task) models.BoardStats {
	var stats models.BoardStats
	for _, t := range tasks {
		if t.IsArchived || !t.OnBoard(board.ID) {
			continue
		}
		stats.TaskCount++
		if e.IsDone(t) {
			stats.CompletedCount++
		}
	}
	stats.ProgressPercent = Percent(stats.CompletedCount, stats.TaskCount)
	return stats
}

// AggregateAll computes statistics for every board in a single pass over tasks.
func (e *Engine) AggregateAll(boards []models.Board, tasks []models.Task) map[int64]models.BoardStats {
	out := make(map[int64]models.BoardStats, len(boards))
	for _, b := range boards {
		out[b.ID] = models.BoardStats{}
	}
	for _, t := range tasks {
		if t.IsArchived || t.BoardID == nil {
			continue
		}
		stats, ok := out[*t.BoardID]
		if !ok {
			continue
		}
		stats.TaskCount++
		if e.IsDone(t) {
			stats.CompletedCount++
		}
		out[*t.BoardID] = stats
	}
	for id, stats := range out {
		stats.ProgressPercent = Percent(stats.CompletedCount, stats.TaskCount)
		out[id] = stats
	}
	return out
}

// WithStats pairs each board with its statistics, preserving board order.
func (e *Engine) WithStats(boards []models.Board, tasks []models.Task) []models.BoardWithStats {
	stats := e.AggregateAll(boards, tasks)
	out := make([]models.BoardWithStats, 0, len(boards))
	for _, b := range boards {
		out = append(out, models.BoardWithStats{Board: b, Stats: stats[b.ID]})
	}
	return out
}

// Percent returns round-half-up(100*part/total), or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}
