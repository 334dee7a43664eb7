package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentMethodService implements ports.PaymentMethodService. Only the most
// recently published method is shown to users.
type PaymentMethodService struct {
	repo       ports.PaymentMethodRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
	now        func() time.Time
}

func NewPaymentMethodService(repo ports.PaymentMethodRepository, transactor ports.DBTransactor, log zerolog.Logger) *PaymentMethodService {
	return &PaymentMethodService{
		repo:       repo,
		transactor: transactor,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Publish replaces the current deposit method.
func (s *PaymentMethodService) Publish(ctx context.Context, req ports.PaymentMethodRequest) (*domain.PaymentMethod, error) {
	m := &domain.PaymentMethod{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Address:   strings.TrimSpace(req.Address),
		QRRef:     strings.TrimSpace(req.QRRef),
		CreatedAt: s.now(),
	}
	if err := domain.RequireField("name", m.Name); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := domain.RequireField("address", m.Address); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	if err := runInTx(ctx, s.transactor, func(tx ports.Tx) error {
		if err := s.repo.Replace(ctx, tx, m); err != nil {
			return apperror.InternalError(fmt.Errorf("replace payment method: %w", err))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.Info().Str("payment_method_id", m.ID.String()).Str("name", m.Name).Msg("payment method published")
	return m, nil
}

// Current returns the published method, or a not-found error before the first Publish.
func (s *PaymentMethodService) Current(ctx context.Context) (*domain.PaymentMethod, error) {
	m, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("latest payment method: %w", err))
	}
	if m == nil {
		return nil, apperror.ErrNotFound("Payment method")
	}
	return m, nil
}

func (s *PaymentMethodService) List(ctx context.Context) ([]domain.PaymentMethod, error) {
	methods, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list payment methods: %w", err))
	}
	if methods == nil {
		methods = []domain.PaymentMethod{}
	}
	return methods, nil
}
