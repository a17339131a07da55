package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/awillits/marginalia/internal/model"
)

type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

func scanNote(scanner interface{ Scan(...any) error }) (*model.Note, error) {
	var n model.Note
	err := scanner.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Topic, &n.Text, &n.SourceImage, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

const noteCols = `id, user_id, title, topic, body, source_image, created_at`

// Create persists a new note with a fresh id and timestamp. Validation
// (non-empty text, placeholder title) happens in the handler before this.
func (s *NoteStore) Create(userID int64, title, topic, text, sourceImage string) (*model.Note, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO notes (id, user_id, title, topic, body, source_image, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, title, topic, text, sourceImage, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *NoteStore) GetByID(userID int64, id string) (*model.Note, error) {
	row := s.db.QueryRow(`SELECT `+noteCols+` FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// List returns the user's notes newest-first.
func (s *NoteStore) List(userID int64) ([]model.Note, error) {
	rows, err := s.db.Query(
		`SELECT `+noteCols+` FROM notes WHERE user_id = ? ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// Topics returns the distinct non-empty topics in use, most recently used first.
func (s *NoteStore) Topics(userID int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT topic FROM notes WHERE user_id = ? AND topic != '' GROUP BY topic ORDER BY MAX(created_at) DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// Update rewrites the editable fields and refreshes created_at, moving the
// note to the top of the working list.
func (s *NoteStore) Update(userID int64, id, title, topic, text, sourceImage string) (*model.Note, error) {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`UPDATE notes SET title = ?, topic = ?, body = ?, source_image = ?, created_at = ? WHERE id = ? AND user_id = ?`,
		title, topic, text, sourceImage, now, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *NoteStore) Delete(userID int64, id string) error {
	_, err := s.db.Exec(`DELETE FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// Count returns the number of notes the user has.
func (s *NoteStore) Count(userID int64) (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM notes WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}
