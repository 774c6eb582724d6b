package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/your-org/eventface/internal/models"
)

// FaceVector is one detected face ready to be stored in the face index.
type FaceVector struct {
	Embedding  []float32
	Confidence float32
}

// ReplaceFaces stores the faces of one image under indexID, dropping whatever was
// indexed for that image before. Re-indexing an image is therefore idempotent.
func (s *PostgresStore) ReplaceFaces(ctx context.Context, indexID, imageID string, faces []FaceVector) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM face_index WHERE index_id = $1 AND image_id = $2`, indexID, imageID); err != nil {
			return fmt.Errorf("clear faces of %s: %w", imageID, err)
		}

		batch := &pgx.Batch{}
		for i, f := range faces {
			batch.Queue(
				`INSERT INTO face_index (index_id, image_id, face_no, embedding, confidence) VALUES ($1, $2, $3, $4, $5)`,
				indexID, imageID, i, pgvector.NewVector(f.Embedding), f.Confidence)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert faces of %s: %w", imageID, err)
		}
		return nil
	})
}

// SearchFaces returns the images in indexID containing a face similar to embedding,
// best first. minScore is a percentage; each image is reported once with its best face.
func (s *PostgresStore) SearchFaces(ctx context.Context, indexID string, embedding []float32, minScore float64, limit int) ([]models.FaceMatch, error) {
	if limit <= 0 {
		limit = 4096
	}
	vec := pgvector.NewVector(embedding)

	rows, err := s.pool.Query(ctx, `
		SELECT image_id, MAX(1 - (embedding <=> $2)) * 100 AS score
		FROM face_index
		WHERE index_id = $1
		  AND 1 - (embedding <=> $2) >= $3
		GROUP BY image_id
		ORDER BY score DESC, image_id
		LIMIT $4`,
		indexID, vec, minScore/100, limit)
	if err != nil {
		return nil, fmt.Errorf("search faces: %w", err)
	}
	defer rows.Close()

	matches := []models.FaceMatch{}
	for rows.Next() {
		var m models.FaceMatch
		if err := rows.Scan(&m.ImageID, &m.Score); err != nil {
			return nil, fmt.Errorf("scan face match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search faces: %w", err)
	}
	return matches, nil
}

// CountIndexedImages returns how many distinct images of indexID have at least one face.
func (s *PostgresStore) CountIndexedImages(ctx context.Context, indexID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT image_id) FROM face_index WHERE index_id = $1`, indexID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count indexed images: %w", err)
	}
	return n, nil
}
