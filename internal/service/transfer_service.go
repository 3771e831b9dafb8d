package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"crosspay/internal/core/domain"
	"crosspay/internal/core/ports"
	"crosspay/pkg/apperror"

	"github.com/rs/zerolog"
)

// TransferConfig tunes the transfer state machine.
type TransferConfig struct {
	// TreasuryIdentity receives the platform fee on settlement. Empty leaves
	// the fee with the sender.
	TreasuryIdentity string
	IdempotencyTTL   time.Duration
}

// TransferServiceImpl implements ports.TransferService.
type TransferServiceImpl struct {
	profiles   ports.ProfileRepository
	transfers  ports.TransferRepository
	custody    ports.AssetCustody
	transactor ports.DBTransactor
	idem       idempotency
	treasury   string
	log        zerolog.Logger
}

// NewTransferService creates a new TransferServiceImpl. idempotencyLogs and
// cache may be nil.
func NewTransferService(
	profiles ports.ProfileRepository,
	transfers ports.TransferRepository,
	custody ports.AssetCustody,
	transactor ports.DBTransactor,
	idempotencyLogs ports.IdempotencyRepository,
	cache ports.IdempotencyCache,
	cfg TransferConfig,
	log zerolog.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		profiles:   profiles,
		transfers:  transfers,
		custody:    custody,
		transactor: transactor,
		idem:       newIdempotency(cache, idempotencyLogs, cfg.IdempotencyTTL, log),
		treasury:   cfg.TreasuryIdentity,
		log:        log,
	}
}

// CreateTransfer prices and records a pending transfer. No value moves until
// SettleTransfer.
func (s *TransferServiceImpl) CreateTransfer(ctx context.Context, req ports.CreateTransferRequest) (*domain.TransferRequest, error) {
	var idempKey string
	if req.IdempotencyKey != "" {
		idempKey = domain.BuildIdempotencyKey(domain.IdempotencyScopeTransfer, req.Sender, req.IdempotencyKey)
	}
	cached, release, err := s.idem.begin(ctx, idempKey)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return decodeCached[domain.TransferRequest](cached)
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	logged, err := s.idem.lookup(ctx, dbTx, idempKey)
	if err != nil {
		return nil, err
	}
	if logged != nil {
		return s.GetTransfer(ctx, *logged)
	}

	sender, err := s.profiles.GetByAddressForUpdate(ctx, dbTx, domain.ProfileAddress(req.Sender))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock sender profile: %w", err))
	}
	if sender == nil {
		return nil, apperror.ErrProfileNotFound()
	}
	if !sender.KYCVerified {
		return nil, apperror.ErrKycNotVerified()
	}
	if req.Amount == 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Asset == "" {
		return nil, apperror.Validation("asset is required")
	}
	if req.Receiver == "" || req.Receiver == req.Sender {
		return nil, apperror.ErrInvalidReceiver()
	}

	receiver, err := s.profiles.GetByAddress(ctx, domain.ProfileAddress(req.Receiver))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get receiver profile: %w", err))
	}
	if receiver == nil {
		return nil, apperror.ErrInvalidReceiver()
	}

	balance, err := s.custody.BalanceOf(ctx, dbTx, req.Sender, req.Asset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get sender balance: %w", err))
	}
	if balance < req.Amount {
		return nil, apperror.ErrInsufficientBalance()
	}

	nonce, err := sender.NextTransferNonce()
	if err != nil {
		return nil, err
	}
	transfer, err := domain.NewTransferRequest(req.Sender, req.Receiver, req.Amount, req.Asset, nonce, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.transfers.Create(ctx, dbTx, transfer); err != nil {
		if errors.Is(err, ports.ErrAddressInUse) {
			return nil, apperror.ErrDuplicateRecord()
		}
		return nil, storeError("create transfer", err)
	}
	if err := s.profiles.Update(ctx, dbTx, sender); err != nil {
		return nil, storeError("update sender profile", err)
	}
	if err := s.idem.record(ctx, dbTx, idempKey, transfer.Address, transfer.CreatedAt); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.idem.remember(ctx, idempKey, transfer)

	s.log.Info().
		Str("address", transfer.Address.String()).
		Str("sender", transfer.Sender).
		Str("receiver", transfer.Receiver).
		Uint64("amount", transfer.Amount).
		Uint64("platform_fee", transfer.PlatformFee).
		Uint64("nonce", transfer.Nonce).
		Msg("transfer created")

	return transfer, nil
}

// SettleTransfer completes a pending transfer: the net amount moves to the
// receiver and the fee to the treasury, if one is configured.
func (s *TransferServiceImpl) SettleTransfer(ctx context.Context, caller string, addr domain.Address) (*domain.TransferRequest, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	transfer, err := s.transfers.GetByAddressForUpdate(ctx, dbTx, addr)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock transfer: %w", err))
	}
	if transfer == nil {
		return nil, apperror.ErrTransferNotFound()
	}
	if transfer.Sender != caller {
		return nil, apperror.ErrUnauthorized()
	}
	if transfer.Status != domain.TransferStatusPending {
		return nil, apperror.ErrInvalidTransferStatus()
	}
	if err := transfer.VerifyConservation(); err != nil {
		return nil, err
	}

	sender, receiver, err := s.lockParties(ctx, dbTx, transfer.Sender, transfer.Receiver)
	if err != nil {
		return nil, err
	}

	balance, err := s.custody.BalanceOf(ctx, dbTx, transfer.Sender, transfer.Asset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get sender balance: %w", err))
	}
	if balance < transfer.Amount {
		return nil, apperror.ErrInsufficientBalance()
	}

	if err := s.custody.MoveCustody(ctx, dbTx, transfer.Sender, transfer.Receiver, transfer.Asset, transfer.NetAmount); err != nil {
		return nil, storeError("move net amount", err)
	}
	if s.treasury != "" && transfer.PlatformFee > 0 {
		if err := s.custody.MoveCustody(ctx, dbTx, transfer.Sender, s.treasury, transfer.Asset, transfer.PlatformFee); err != nil {
			return nil, storeError("move platform fee", err)
		}
	}

	if err := transfer.Complete(time.Now()); err != nil {
		return nil, err
	}
	if err := sender.RecordSent(transfer.Amount); err != nil {
		return nil, err
	}
	if err := receiver.RecordReceived(transfer.NetAmount); err != nil {
		return nil, err
	}

	if err := s.transfers.Update(ctx, dbTx, transfer); err != nil {
		return nil, storeError("update transfer", err)
	}
	if err := s.profiles.Update(ctx, dbTx, sender); err != nil {
		return nil, storeError("update sender profile", err)
	}
	if err := s.profiles.Update(ctx, dbTx, receiver); err != nil {
		return nil, storeError("update receiver profile", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("address", transfer.Address.String()).
		Uint64("amount", transfer.Amount).
		Uint64("net_amount", transfer.NetAmount).
		Uint64("platform_fee", transfer.PlatformFee).
		Msg("transfer settled")

	return transfer, nil
}

// lockParties locks both profiles in address order so two settlements that
// touch the same pair cannot deadlock.
func (s *TransferServiceImpl) lockParties(ctx context.Context, tx ports.Tx, senderID, receiverID string) (*domain.UserProfile, *domain.UserProfile, error) {
	senderAddr, receiverAddr := domain.ProfileAddress(senderID), domain.ProfileAddress(receiverID)

	first, second := senderAddr, receiverAddr
	if bytes.Compare(first.Bytes(), second.Bytes()) > 0 {
		first, second = second, first
	}

	locked := make(map[domain.Address]*domain.UserProfile, 2)
	for _, addr := range []domain.Address{first, second} {
		p, err := s.profiles.GetByAddressForUpdate(ctx, tx, addr)
		if err != nil {
			return nil, nil, apperror.InternalError(fmt.Errorf("lock profile: %w", err))
		}
		locked[addr] = p
	}

	sender, receiver := locked[senderAddr], locked[receiverAddr]
	if sender == nil {
		return nil, nil, apperror.ErrProfileNotFound()
	}
	if receiver == nil {
		return nil, nil, apperror.ErrInvalidReceiver()
	}
	return sender, receiver, nil
}

// CancelTransfer withdraws a pending transfer. Only the sender may cancel.
func (s *TransferServiceImpl) CancelTransfer(ctx context.Context, caller string, addr domain.Address) (*domain.TransferRequest, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	transfer, err := s.transfers.GetByAddressForUpdate(ctx, dbTx, addr)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock transfer: %w", err))
	}
	if transfer == nil {
		return nil, apperror.ErrTransferNotFound()
	}
	if transfer.Sender != caller {
		return nil, apperror.ErrUnauthorized()
	}
	if err := transfer.Cancel(time.Now()); err != nil {
		return nil, err
	}

	if err := s.transfers.Update(ctx, dbTx, transfer); err != nil {
		return nil, storeError("update transfer", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("address", transfer.Address.String()).
		Msg("transfer cancelled")

	return transfer, nil
}

// GetTransfer returns the transfer stored at addr.
func (s *TransferServiceImpl) GetTransfer(ctx context.Context, addr domain.Address) (*domain.TransferRequest, error) {
	transfer, err := s.transfers.GetByAddress(ctx, addr)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transfer: %w", err))
	}
	if transfer == nil {
		return nil, apperror.ErrTransferNotFound()
	}
	return transfer, nil
}

// ListTransfers pages through transfers the identity sent or received.
func (s *TransferServiceImpl) ListTransfers(ctx context.Context, params ports.ListParams) ([]domain.TransferRequest, int64, error) {
	transfers, total, err := s.transfers.List(ctx, params.Normalize())
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list transfers: %w", err))
	}
	return transfers, total, nil
}
