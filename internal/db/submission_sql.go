package db

import (
	"fmt"
	"time"

	m "dexpilot/internal/model"
)

func (s *Storage) SaveSubmission(sub *m.Submission) error {

	result := s.db.Create(sub)
	if result.Error != nil {
		return fmt.Errorf("failed to save submission: %w", result.Error)
	}

	s.lg.Info().Str("op", sub.Operation).Str("txHash", sub.TxHash).Msg("Submission journaled")
	return nil
}

func (s *Storage) UpdateSubmissionStatus(txHash string, status m.SubmissionStatus, failReason string) error {

	result := s.db.Model(&m.Submission{}).
		Where("tx_hash = ?", txHash).
		Updates(map[string]interface{}{"status": status, "fail_reason": failReason})
	if result.Error != nil {
		return fmt.Errorf("failed to update submission status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no submission found for tx %s", txHash)
	}

	return nil
}

func (s *Storage) RetrieveSubmissionByTxHash(txHash string) (*m.Submission, error) {

	var sub m.Submission
	result := s.db.Where("tx_hash = ?", txHash).First(&sub)
	if result.Error != nil {
		return nil, result.Error
	}

	return &sub, nil
}

func (s *Storage) RetrieveSubmissions(limit int) ([]m.Submission, error) {

	var subs []m.Submission
	result := s.db.Order("created_at DESC").Limit(limit).Find(&subs)
	if result.Error != nil {
		return nil, result.Error
	}

	s.lg.Info().Msgf("Retrieved %d submissions", len(subs))
	return subs, nil
}

func (s *Storage) RetrievePendingSubmissions() ([]m.Submission, error) {

	var subs []m.Submission
	result := s.db.Where("status = ?", m.StatusPending).Order("created_at ASC").Find(&subs)
	if result.Error != nil {
		return nil, result.Error
	}

	return subs, nil
}

func (s *Storage) SavePairSnapshot(snap *m.PairSnapshot) error {

	result := s.db.Create(snap)
	if result.Error != nil {
		return fmt.Errorf("failed to save pair snapshot: %w", result.Error)
	}

	return nil
}

func (s *Storage) RetrievePairSnapshots(pair string, since time.Time) ([]m.PairSnapshot, error) {

	var snaps []m.PairSnapshot
	result := s.db.Where("pair = ? AND timestamp >= ?", pair, since).
		Order("timestamp ASC").
		Find(&snaps)
	if result.Error != nil {
		return nil, result.Error
	}

	return snaps, nil
}

func (s *Storage) RetrieveUserByUsername(username string) (*m.User, error) {

	var user m.User
	result := s.db.Where("username = ?", username).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}
