package services

import (
	"context"
	"time"

	"eventhall-backend/apperr"
	"eventhall-backend/models"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreatePaymentInput struct {
	EventID         uuid.UUID       `json:"event_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"gt=0"`
	PaymentMethod   string          `json:"payment_method" binding:"required,oneof=cash bank_transfer credit_card check other"`
	PaymentDate     *time.Time      `json:"payment_date"`
	PayerName       string          `json:"payer_name"`
	PayerPhone      string          `json:"payer_phone" binding:"omitempty,phone"`
	PayerEmail      string          `json:"payer_email" binding:"omitempty,email"`
	Description     string          `json:"description"`
	Notes           string          `json:"notes"`
	TransactionID   string          `json:"transaction_id"`
	ReferenceNumber string          `json:"reference_number"`
}

type UpdatePaymentInput struct {
	Amount          *decimal.Decimal `json:"amount" binding:"omitempty,gt=0"`
	PaymentMethod   *string          `json:"payment_method" binding:"omitempty,oneof=cash bank_transfer credit_card check other"`
	PaymentDate     *time.Time       `json:"payment_date"`
	PaymentStatus   *string          `json:"payment_status" binding:"omitempty,oneof=pending paid overdue"`
	PayerName       *string          `json:"payer_name"`
	PayerPhone      *string          `json:"payer_phone" binding:"omitempty,phone"`
	PayerEmail      *string          `json:"payer_email" binding:"omitempty,email"`
	Description     *string          `json:"description"`
	Notes           *string          `json:"notes"`
	TransactionID   *string          `json:"transaction_id"`
	ReferenceNumber *string          `json:"reference_number"`
	IsVerified      *bool            `json:"is_verified"`
}

type RefundPaymentInput struct {
	RefundAmount decimal.Decimal `json:"refund_amount" binding:"gt=0"`
	RefundReason string          `json:"refund_reason" binding:"required"`
}

// PaymentService records payments against events and keeps the event
// rollup current.
type PaymentService struct {
	finance *FinanceService
	node    *snowflake.Node
	log     *zap.Logger
}

func NewPaymentService(finance *FinanceService, node *snowflake.Node, log *zap.Logger) *PaymentService {
	return &PaymentService{finance: finance, node: node, log: log}
}

func receiptNumber(node *snowflake.Node) string {
	return "RCPT-" + node.Generate().String()
}

// Record stores a paid payment and rolls the event up in the same transaction.
func (s *PaymentService) Record(ctx context.Context, input CreatePaymentInput, userID uuid.UUID) (*models.Payment, *models.Event, error) {
	if !input.Amount.IsPositive() {
		return nil, nil, apperr.InvalidAmount("payment amount must be greater than zero")
	}

	paymentDate := time.Now().UTC()
	if input.PaymentDate != nil {
		paymentDate = input.PaymentDate.UTC()
	}

	var (
		payment *models.Payment
		event   *models.Event
	)
	err := s.finance.inTx(ctx, func(st stores) error {
		var err error
		if event, err = st.events.GetByID(ctx, input.EventID); err != nil {
			return err
		}
		payment = &models.Payment{
			EventID:         event.ID,
			EventName:       event.EventName,
			ReceiptNumber:   receiptNumber(s.node),
			Amount:          input.Amount.Round(2),
			PaymentMethod:   input.PaymentMethod,
			PaymentDate:     paymentDate,
			PaymentStatus:   models.PaymentStatusPaid,
			PayerName:       input.PayerName,
			PayerPhone:      input.PayerPhone,
			PayerEmail:      input.PayerEmail,
			Description:     input.Description,
			Notes:           input.Notes,
			TransactionID:   input.TransactionID,
			ReferenceNumber: input.ReferenceNumber,
			CreatedBy:       &userID,
		}
		if err := st.payments.Create(ctx, payment); err != nil {
			return err
		}
		return s.finance.rollup(ctx, st, event)
	})
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("event_id", event.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("event_payment_status", event.PaymentStatus))
	return payment, event, nil
}

func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, input UpdatePaymentInput, userID uuid.UUID) (*models.Payment, error) {
	var payment *models.Payment
	err := s.finance.inTx(ctx, func(st stores) error {
		var err error
		if payment, err = st.payments.GetByID(ctx, id); err != nil {
			return err
		}
		if input.Amount != nil {
			if input.Amount.LessThan(payment.RefundAmount) {
				return apperr.InvalidAmount("amount cannot be lower than the refunded amount")
			}
			payment.Amount = input.Amount.Round(2)
		}
		if input.PaymentStatus != nil {
			if payment.IsRefunded {
				return apperr.InvalidState("Refunded payments cannot change status")
			}
			payment.PaymentStatus = *input.PaymentStatus
		}
		if input.PaymentMethod != nil {
			payment.PaymentMethod = *input.PaymentMethod
		}
		if input.PaymentDate != nil {
			payment.PaymentDate = input.PaymentDate.UTC()
		}
		if input.PayerName != nil {
			payment.PayerName = *input.PayerName
		}
		if input.PayerPhone != nil {
			payment.PayerPhone = *input.PayerPhone
		}
		if input.PayerEmail != nil {
			payment.PayerEmail = *input.PayerEmail
		}
		if input.Description != nil {
			payment.Description = *input.Description
		}
		if input.Notes != nil {
			payment.Notes = *input.Notes
		}
		if input.TransactionID != nil {
			payment.TransactionID = *input.TransactionID
		}
		if input.ReferenceNumber != nil {
			payment.ReferenceNumber = *input.ReferenceNumber
		}
		if input.IsVerified != nil && *input.IsVerified != payment.IsVerified {
			payment.IsVerified = *input.IsVerified
			if payment.IsVerified {
				now := time.Now().UTC()
				payment.VerifiedBy = &userID
				payment.VerifiedAt = &now
			} else {
				payment.VerifiedBy = nil
				payment.VerifiedAt = nil
			}
		}
		if err := st.payments.Save(ctx, payment); err != nil {
			return err
		}
		event, err := st.events.GetByID(ctx, payment.EventID)
		if err != nil {
			return err
		}
		return s.finance.rollup(ctx, st, event)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// Verify marks a payment as checked against the bank or till. Verification
// does not change any event totals.
func (s *PaymentService) Verify(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Payment, error) {
	var payment *models.Payment
	err := s.finance.inTx(ctx, func(st stores) error {
		var err error
		if payment, err = st.payments.GetByID(ctx, id); err != nil {
			return err
		}
		if payment.IsVerified {
			return apperr.Conflict("Payment already verified")
		}
		now := time.Now().UTC()
		payment.IsVerified = true
		payment.VerifiedBy = &userID
		payment.VerifiedAt = &now
		return st.payments.Save(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("payment verified",
		zap.String("payment_id", payment.ID.String()),
		zap.String("verified_by", userID.String()))
	return payment, nil
}

// Refund records a full or partial refund. The request is checked before
// anything is written.
func (s *PaymentService) Refund(ctx context.Context, id uuid.UUID, input RefundPaymentInput, userID uuid.UUID) (*models.Payment, *models.Event, error) {
	var (
		payment *models.Payment
		event   *models.Event
	)
	err := s.finance.inTx(ctx, func(st stores) error {
		var err error
		if payment, err = st.payments.GetByID(ctx, id); err != nil {
			return err
		}
		if payment.IsRefunded {
			return apperr.InvalidState("Payment already refunded")
		}
		if payment.PaymentStatus != models.PaymentStatusPaid {
			return apperr.InvalidState("Only paid payments can be refunded")
		}
		if !input.RefundAmount.IsPositive() {
			return apperr.InvalidAmount("refund amount must be greater than zero")
		}
		if input.RefundAmount.GreaterThan(payment.Amount) {
			return apperr.InvalidAmount("refund amount cannot exceed payment amount")
		}

		now := time.Now().UTC()
		payment.IsRefunded = true
		payment.RefundAmount = input.RefundAmount.Round(2)
		payment.RefundDate = &now
		payment.RefundReason = input.RefundReason
		payment.PaymentStatus = models.PaymentStatusRefunded
		if err := st.payments.Save(ctx, payment); err != nil {
			return err
		}

		if event, err = st.events.GetByID(ctx, payment.EventID); err != nil {
			return err
		}
		event.UpdatedBy = &userID
		return s.finance.rollup(ctx, st, event)
	})
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("payment refunded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("refund_amount", payment.RefundAmount.String()),
		zap.String("event_payment_status", event.PaymentStatus))
	return payment, event, nil
}

// Delete removes a payment. A missing parent event is tolerated.
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.finance.inTx(ctx, func(st stores) error {
		payment, err := st.payments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := st.payments.Delete(ctx, id); err != nil {
			return err
		}
		event, err := st.events.GetByID(ctx, payment.EventID)
		if apperr.Is(err, apperr.CodeNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return s.finance.rollup(ctx, st, event)
	})
}
