// Package settlement records tournament results and pays prizes. Prize
// distribution is idempotent per winner: the conditional prize_credited flip
// and the wallet credit share one DB transaction, so a re-run credits only
// the winners that were never paid.
package settlement

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slotarena/platform/internal/domain"
	"github.com/slotarena/platform/internal/ledger"
	"github.com/slotarena/platform/internal/repository"
)

// Service orchestrates winner selection, prize distribution and the
// cancellation refund sweep.
type Service struct {
	pool         *pgxpool.Pool
	tournaments  repository.TournamentRepository
	participants repository.ParticipantRepository
	winners      repository.WinnerRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
	engine       *ledger.Engine
	logger       *slog.Logger
}

// NewService creates a settlement service.
func NewService(
	pool *pgxpool.Pool,
	tournaments repository.TournamentRepository,
	participants repository.ParticipantRepository,
	winners repository.WinnerRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
	engine *ledger.Engine,
	logger *slog.Logger,
) *Service {
	return &Service{
		pool:         pool,
		tournaments:  tournaments,
		participants: participants,
		winners:      winners,
		transactions: transactions,
		outbox:       outbox,
		engine:       engine,
		logger:       logger,
	}
}

// CreditOutcome labels one winner's result in a distribution run.
type CreditOutcome string

const (
	OutcomeCredited        CreditOutcome = "credited"
	OutcomeAlreadyCredited CreditOutcome = "already_credited"
	OutcomeFailed          CreditOutcome = "failed"
)

// CreditResult is the per-winner report from DistributePrizes.
type CreditResult struct {
	UserID        uuid.UUID     `json:"userId"`
	Position      int           `json:"position"`
	Amount        int64         `json:"amount"`
	Outcome       CreditOutcome `json:"outcome"`
	TransactionID *uuid.UUID    `json:"transactionId,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// RefundResult is the per-participant report from the cancellation sweep.
type RefundResult struct {
	UserID        uuid.UUID     `json:"userId"`
	Amount        int64         `json:"amount"`
	Outcome       CreditOutcome `json:"outcome"`
	TransactionID *uuid.UUID    `json:"transactionId,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// SelectWinners validates the podium, computes each winner's payout under
// the tournament's reward policy and records the winner list. Re-selection
// is allowed until the first prize has been credited.
func (s *Service) SelectWinners(ctx context.Context, tournamentID uuid.UUID, ranked []domain.RankedEntry) ([]domain.Winner, error) {
	if err := domain.ValidateRankedList(ranked); err != nil {
		return nil, err
	}

	t, err := s.tournaments.FindByID(ctx, s.pool, tournamentID)
	if err != nil {
		return nil, domain.ErrInternal("find tournament", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound("tournament", tournamentID.String())
	}
	if t.Status != domain.TournamentLive && t.Status != domain.TournamentCompleted {
		return nil, domain.ErrValidation("winners can only be selected for a live or completed tournament")
	}

	credited, err := s.winners.AnyCredited(ctx, s.pool, tournamentID)
	if err != nil {
		return nil, domain.ErrInternal("check credited winners", err)
	}
	if credited {
		return nil, domain.ErrConflict("winners are final once a prize has been credited")
	}

	policy, err := domain.PolicyFor(t)
	if err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	winners := make([]domain.Winner, 0, len(ranked))
	for _, entry := range ranked {
		p, err := s.participants.FindByTournamentAndUser(ctx, s.pool, tournamentID, entry.UserID)
		if err != nil {
			return nil, domain.ErrInternal("find participant", err)
		}
		if p == nil {
			return nil, domain.ErrValidation("ranked user " + entry.UserID.String() + " is not a participant")
		}
		winners = append(winners, domain.Winner{
			TournamentID: tournamentID,
			UserID:       entry.UserID,
			Position:     entry.Position,
			Kills:        entry.Kills,
			Reward:       policy.TotalReward(t.Prizes.ForPosition(entry.Position), entry.Kills),
		})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin settlement tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.winners.Replace(ctx, tx, tournamentID, winners); err != nil {
		return nil, domain.ErrInternal("replace winners", err)
	}
	for _, w := range winners {
		if err := s.participants.RecordResult(ctx, tx, tournamentID, w.UserID, w.Position, w.Reward, domain.ParticipantWinner); err != nil {
			return nil, domain.ErrInternal("record result", err)
		}
	}
	if t.Status == domain.TournamentLive {
		applied, err := s.tournaments.TransitionStatus(ctx, tx, tournamentID, domain.TournamentLive, domain.TournamentCompleted)
		if err != nil {
			return nil, domain.ErrInternal("transition status", err)
		}
		if applied {
			if err := s.outbox.Insert(ctx, tx, domain.NewTournamentStatusEvent(tournamentID, domain.TournamentLive, domain.TournamentCompleted)); err != nil {
				return nil, domain.ErrInternal("insert status event", err)
			}
		}
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewWinnersSelectedEvent(tournamentID, winners)); err != nil {
		return nil, domain.ErrInternal("insert winners event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit settlement tx", err)
	}

	s.logger.Info("winners selected", "tournament_id", tournamentID, "count", len(winners))
	return winners, nil
}

// DistributePrizes pays each recorded winner in its own committed
// transaction. One winner failing never rolls back another's credit, and a
// re-run after a partial failure pays only the remainder.
func (s *Service) DistributePrizes(ctx context.Context, tournamentID uuid.UUID) ([]CreditResult, error) {
	t, err := s.tournaments.FindByID(ctx, s.pool, tournamentID)
	if err != nil {
		return nil, domain.ErrInternal("find tournament", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound("tournament", tournamentID.String())
	}
	if t.Status != domain.TournamentCompleted {
		return nil, domain.ErrValidation("prizes can only be distributed for a completed tournament")
	}

	winners, err := s.winners.ListByTournament(ctx, s.pool, tournamentID)
	if err != nil {
		return nil, domain.ErrInternal("list winners", err)
	}
	if len(winners) == 0 {
		return nil, domain.ErrValidation("no winners recorded for this tournament")
	}

	results := make([]CreditResult, 0, len(winners))
	for i := range winners {
		results = append(results, s.creditWinner(ctx, &winners[i]))
	}
	return results, nil
}

// creditWinner posts one prize credit. The credit and the prize_credited
// flip commit together; when the flip does not apply the whole transaction
// rolls back, so an already-paid winner never receives a second entry.
func (s *Service) creditWinner(ctx context.Context, w *domain.Winner) CreditResult {
	res := CreditResult{UserID: w.UserID, Position: w.Position, Amount: w.Reward}

	if w.PrizeCredited {
		res.Outcome = OutcomeAlreadyCredited
		res.TransactionID = w.TransactionID
		return res
	}
	if w.Reward <= 0 {
		res.Outcome = OutcomeFailed
		res.Error = "non-positive reward"
		return res
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}
	defer tx.Rollback(ctx)

	meta, _ := json.Marshal(map[string]interface{}{
		"position": w.Position,
		"kills":    w.Kills,
	})
	credit, err := s.engine.ExecuteRewardCredit(ctx, tx, domain.RewardCreditParams{
		UserID:       w.UserID,
		TournamentID: w.TournamentID,
		Amount:       w.Reward,
		Metadata:     meta,
	})
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}

	applied, err := s.winners.MarkCredited(ctx, tx, w.TournamentID, w.UserID, credit.Transaction.ID)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}
	if !applied {
		// Concurrent run won the flip; rollback discards our credit.
		res.Outcome = OutcomeAlreadyCredited
		return res
	}

	w.PrizeCredited = true
	w.TransactionID = &credit.Transaction.ID
	if err := s.outbox.Insert(ctx, tx, domain.NewPrizeCreditedEvent(w.TournamentID, w)); err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}

	if err := tx.Commit(ctx); err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}

	s.logger.Info("prize credited",
		"tournament_id", w.TournamentID,
		"user_id", w.UserID,
		"position", w.Position,
		"amount", w.Reward,
	)
	res.Outcome = OutcomeCredited
	res.TransactionID = &credit.Transaction.ID
	return res
}

// RefundCancelled returns every participant's entry fee after a tournament
// was cancelled. Idempotent: the partial unique index on refund entries
// admits one refund per (user, tournament), so a crashed or concurrent
// sweep can simply be re-run. The existence pre-check is advisory.
func (s *Service) RefundCancelled(ctx context.Context, tournamentID uuid.UUID) ([]RefundResult, error) {
	t, err := s.tournaments.FindByID(ctx, s.pool, tournamentID)
	if err != nil {
		return nil, domain.ErrInternal("find tournament", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound("tournament", tournamentID.String())
	}
	if t.Status != domain.TournamentCancelled {
		return nil, domain.ErrValidation("refund sweep applies only to a cancelled tournament")
	}

	participants, err := s.participants.ListByTournament(ctx, s.pool, tournamentID)
	if err != nil {
		return nil, domain.ErrInternal("list participants", err)
	}

	results := make([]RefundResult, 0, len(participants))
	for _, p := range participants {
		results = append(results, s.refundParticipant(ctx, tournamentID, p.UserID))
	}
	return results, nil
}

func (s *Service) refundParticipant(ctx context.Context, tournamentID, userID uuid.UUID) RefundResult {
	res := RefundResult{UserID: userID}

	debit, err := s.transactions.FindByTournamentAndType(ctx, s.pool, tournamentID, userID, domain.TxTournamentEntry)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}
	if debit == nil {
		// Free-entry tournament, nothing to return.
		res.Outcome = OutcomeAlreadyCredited
		return res
	}
	res.Amount = debit.Amount

	refunded, err := s.transactions.FindByTournamentAndType(ctx, s.pool, tournamentID, userID, domain.TxRefund)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}
	if refunded != nil {
		res.Outcome = OutcomeAlreadyCredited
		res.TransactionID = &refunded.ID
		return res
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}
	defer tx.Rollback(ctx)

	meta, _ := json.Marshal(map[string]interface{}{"reason": "tournament_cancelled"})
	refund, err := s.engine.ExecuteRefund(ctx, tx, domain.RefundParams{
		UserID:       userID,
		TournamentID: tournamentID,
		Amount:       debit.Amount,
		Metadata:     meta,
	})
	if err != nil {
		// A concurrent sweep won the race to the partial unique index on
		// refund entries. The rollback discards this credit; report the
		// committed one.
		if repository.IsUniqueViolation(err) {
			tx.Rollback(ctx)
			res.Outcome = OutcomeAlreadyCredited
			if existing, findErr := s.transactions.FindByTournamentAndType(ctx, s.pool, tournamentID, userID, domain.TxRefund); findErr == nil && existing != nil {
				res.TransactionID = &existing.ID
			}
			return res
		}
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}
	if err := tx.Commit(ctx); err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		return res
	}

	s.logger.Info("entry fee refunded",
		"tournament_id", tournamentID,
		"user_id", userID,
		"amount", debit.Amount,
	)
	res.Outcome = OutcomeCredited
	res.TransactionID = &refund.Transaction.ID
	return res
}
