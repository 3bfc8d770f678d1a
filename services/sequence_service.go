package services

import (
	"fmt"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/apperrors"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/config"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Identifier namespaces. Each owns an independent counter row.
const (
	NamespaceApplication = "application"
	NamespaceRoll        = "roll"
)

// SequenceService issues unique, strictly increasing, human-readable
// identifiers. The counter row is read and advanced under a row lock so that
// concurrent callers across processes can never observe the same value.
// Gaps are possible when an enclosing transaction rolls back; duplicates are not.
type SequenceService struct {
	db *gorm.DB
}

func NewSequenceService() *SequenceService {
	return &SequenceService{db: database.GetDB()}
}

// NewSequenceServiceWithDB is used by callers that manage their own connection,
// primarily tests.
func NewSequenceServiceWithDB(db *gorm.DB) *SequenceService {
	return &SequenceService{db: db}
}

// Next allocates the next identifier for the namespace in its own transaction.
func (s *SequenceService) Next(namespace string) (string, error) {
	var id string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		id, txErr = s.NextTx(tx, namespace)
		return txErr
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// NextTx allocates the next identifier inside the caller's transaction, so the
// allocation commits or rolls back together with the caller's writes.
func (s *SequenceService) NextTx(tx *gorm.DB, namespace string) (string, error) {
	prefix, ok := namespacePrefix(namespace)
	if !ok {
		return "", apperrors.NewValidationFailed(fmt.Sprintf("unknown identifier namespace %q", namespace))
	}

	var counter models.SequenceCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("namespace = ?", namespace).
		First(&counter).Error
	if err == gorm.ErrRecordNotFound {
		// Counter rows are created at migration time; recreate defensively so a
		// truncated table cannot take admissions down.
		counter = models.SequenceCounter{Namespace: namespace}
		if err = tx.Create(&counter).Error; err != nil {
			return "", fmt.Errorf("create sequence counter %q: %w", namespace, err)
		}
	} else if err != nil {
		return "", fmt.Errorf("lock sequence counter %q: %w", namespace, err)
	}

	next := counter.Value + 1
	if err := tx.Model(&models.SequenceCounter{}).
		Where("namespace = ?", namespace).
		Update("value", next).Error; err != nil {
		return "", fmt.Errorf("advance sequence counter %q: %w", namespace, err)
	}

	return FormatIdentifier(prefix, next, config.AppConfig.SequencePadWidth), nil
}

// FormatIdentifier renders a sequence value as PREFIX-000123. Pure function;
// the numeric value is the only piece of state.
func FormatIdentifier(prefix string, value uint64, padWidth int) string {
	return fmt.Sprintf("%s-%0*d", prefix, padWidth, value)
}

func namespacePrefix(namespace string) (string, bool) {
	switch namespace {
	case NamespaceApplication:
		return config.AppConfig.ApplicationNumberPrefix, true
	case NamespaceRoll:
		return config.AppConfig.RollNumberPrefix, true
	}
	return "", false
}
