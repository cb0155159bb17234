package database

import (
	"context"
	"fmt"
)

// EnqueueForFollowers adds url to the pending images of every follower of
// senderID and returns the usernames it was queued for.
func (db *DB) EnqueueForFollowers(ctx context.Context, senderID, url string) ([]string, error) {
	query := `
		WITH queued AS (
			INSERT INTO pending_images (user_id, sender_id, url)
			SELECT follower_id, $1, $2 FROM follows WHERE followed_id = $1
			RETURNING user_id
		)
		SELECT u.username FROM queued q JOIN users u ON u.id = q.user_id
	`
	rows, err := db.Pool.Query(ctx, query, senderID, url)
	if err != nil {
		return nil, fmt.Errorf("enqueue image: %w", err)
	}
	defer rows.Close()

	var recipients []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		recipients = append(recipients, username)
	}
	return recipients, rows.Err()
}

// TakePendingImages removes and returns the pending image URLs of userID in
// arrival order.
func (db *DB) TakePendingImages(ctx context.Context, userID string) ([]string, error) {
	query := `
		WITH taken AS (
			DELETE FROM pending_images WHERE user_id = $1
			RETURNING id, url
		)
		SELECT url FROM taken ORDER BY id
	`
	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("take pending images: %w", err)
	}
	defer rows.Close()

	urls := []string{}
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}
