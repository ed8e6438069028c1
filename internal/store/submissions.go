package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AddSubmission stores a submission with its embedding and returns the
// generated id.
func (s *Store) AddSubmission(ctx context.Context, projectID, userID, content string, embedding []float32) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, project_id, user_id, content, embedding)
		VALUES (?, ?, ?, ?, ?)`,
		id, projectID, userID, content, encodeFloat32s(embedding))
	if err != nil {
		return "", fmt.Errorf("failed to insert submission: %w", err)
	}
	return id, nil
}

// Submissions returns a project's submissions in insertion order.
func (s *Store) Submissions(ctx context.Context, projectID string) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, user_id, content, embedding, created_at
		FROM submissions WHERE project_id = ? ORDER BY created_at, rowid`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var sub Submission
		var blob []byte
		if err := rows.Scan(&sub.ID, &sub.ProjectID, &sub.UserID, &sub.Content, &blob, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		sub.Embedding = decodeFloat32s(blob)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ClearProject removes every submission belonging to a project and reports
// how many were deleted.
func (s *Store) ClearProject(ctx context.Context, projectID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE project_id = ?`, projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear project: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
