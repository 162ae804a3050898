package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrLeadNotFound = errors.New("lead not found")

// LeadStore is the backend's durable record of leads and their transcripts.
type LeadStore interface {
	UpsertLeadByEmail(in LeadInput) (*Lead, bool, error)
	GetLeadByID(id string) (*Lead, error)
	AppendChatMessage(leadID string, msg ChatMessage) (*Lead, error)
	ListLeads(status LeadStatus, limit, offset int) ([]Lead, error)
	CountLeads(status LeadStatus) (int, error)
	CountLeadsByStatus() (map[LeadStatus]int, error)
	UpdateLeadStatus(id string, status LeadStatus) error
	Close() error
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLStore implements LeadStore on database/sql for both supported drivers.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

const leadColumns = "id, name, email, phone, country, initial_message, chat_messages, status, assigned_to, ip_address, user_agent, created_at, updated_at"

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders into the driver's positional form.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) forUpdate() string {
	if s.dialect == dialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*Lead, error) {
	var lead Lead
	var initialMessage sql.NullString
	var chatJSON sql.NullString
	var assignedTo sql.NullInt64
	var ipAddress, userAgent sql.NullString
	var status string

	err := row.Scan(&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Country,
		&initialMessage, &chatJSON, &status, &assignedTo, &ipAddress, &userAgent,
		&lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return nil, err
	}

	lead.Status = LeadStatus(status)
	lead.IPAddress = ipAddress.String
	lead.UserAgent = userAgent.String
	if initialMessage.Valid {
		lead.InitialMessage = &initialMessage.String
	}
	if assignedTo.Valid {
		lead.AssignedTo = &assignedTo.Int64
	}
	lead.ChatMessages = decodeChatMessages(lead.ID, chatJSON.String)
	return &lead, nil
}

// decodeChatMessages never fails: a corrupt transcript column reads as empty.
func decodeChatMessages(leadID, raw string) []ChatMessage {
	messages := []ChatMessage{}
	if raw == "" {
		return messages
	}
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		logrus.WithFields(logrus.Fields{"lead_id": leadID, "error": err}).Warn("Failed to decode chat_messages, treating transcript as empty")
		return []ChatMessage{}
	}
	return messages
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpsertLeadByEmail creates a lead, or updates name/phone/country of the
// lead already holding this email. The bool reports whether a row was created.
func (s *SQLStore) UpsertLeadByEmail(in LeadInput) (*Lead, bool, error) {
	email := normalizeEmail(in.Email)
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin lead upsert: %w", err)
	}
	defer tx.Rollback()

	var leadID string
	created := false
	err = tx.QueryRow(s.rebind("SELECT id FROM chat_leads WHERE email = ?"+s.forUpdate()), email).Scan(&leadID)
	switch {
	case err == sql.ErrNoRows:
		leadID = uuid.NewString()
		created = true
		_, err = tx.Exec(s.rebind(`INSERT INTO chat_leads
			(id, name, email, phone, country, chat_messages, status, ip_address, user_agent, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			leadID, in.Name, email, in.Phone, in.Country, "[]", string(StatusNew), in.IPAddress, in.UserAgent, now, now)
		if err != nil {
			return nil, false, fmt.Errorf("failed to insert lead: %w", err)
		}
	case err != nil:
		return nil, false, fmt.Errorf("failed to look up lead by email: %w", err)
	default:
		_, err = tx.Exec(s.rebind("UPDATE chat_leads SET name = ?, phone = ?, country = ?, updated_at = ? WHERE id = ?"),
			in.Name, in.Phone, in.Country, now, leadID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to update lead %s: %w", leadID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit lead upsert: %w", err)
	}

	lead, err := s.GetLeadByID(leadID)
	if err != nil {
		return nil, false, err
	}
	if lead == nil {
		return nil, false, fmt.Errorf("lead %s vanished after upsert", leadID)
	}
	return lead, created, nil
}

func (s *SQLStore) GetLeadByID(id string) (*Lead, error) {
	row := s.db.QueryRow(s.rebind("SELECT "+leadColumns+" FROM chat_leads WHERE id = ?"), id)
	lead, err := scanLead(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// AppendChatMessage adds msg to the lead's transcript and records it as the
// initial message when none is set yet. Returns (nil, nil) for unknown leads.
func (s *SQLStore) AppendChatMessage(leadID string, msg ChatMessage) (*Lead, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin message append: %w", err)
	}
	defer tx.Rollback()

	var chatJSON sql.NullString
	err = tx.QueryRow(s.rebind("SELECT chat_messages FROM chat_leads WHERE id = ?"+s.forUpdate()), leadID).Scan(&chatJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read chat messages: %w", err)
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	messages := append(decodeChatMessages(leadID, chatJSON.String), msg)
	encoded, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat messages: %w", err)
	}

	_, err = tx.Exec(s.rebind(`UPDATE chat_leads SET
		chat_messages = ?,
		initial_message = CASE WHEN initial_message IS NULL OR initial_message = '' THEN ? ELSE initial_message END,
		updated_at = ?
		WHERE id = ?`), string(encoded), msg.Message, time.Now().UTC(), leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to save chat messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit message append: %w", err)
	}
	return s.GetLeadByID(leadID)
}

// ListLeads returns leads newest first. An empty status lists every lead.
func (s *SQLStore) ListLeads(status LeadStatus, limit, offset int) ([]Lead, error) {
	query := "SELECT " + leadColumns + " FROM chat_leads"
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	leads := []Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead row: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lead rows: %w", err)
	}
	return leads, nil
}

func (s *SQLStore) CountLeads(status LeadStatus) (int, error) {
	query := "SELECT COUNT(*) FROM chat_leads"
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	var count int
	if err := s.db.QueryRow(s.rebind(query), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}

func (s *SQLStore) CountLeadsByStatus() (map[LeadStatus]int, error) {
	rows, err := s.db.Query("SELECT status, COUNT(*) FROM chat_leads GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to query lead stats: %w", err)
	}
	defer rows.Close()

	counts := make(map[LeadStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan lead stats row: %w", err)
		}
		counts[LeadStatus(status)] = count
	}
	return counts, rows.Err()
}

func (s *SQLStore) UpdateLeadStatus(id string, status LeadStatus) error {
	res, err := s.db.Exec(s.rebind("UPDATE chat_leads SET status = ?, updated_at = ? WHERE id = ?"),
		string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to execute lead status update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrLeadNotFound
	}
	return nil
}
