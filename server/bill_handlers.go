package main

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pverdier/go-gestion-locative/billing"
	"github.com/pverdier/go-gestion-locative/receipt"
	"github.com/pverdier/go-gestion-locative/shared/models"
	"github.com/pverdier/go-gestion-locative/shared/utils"
)

// billEventPublisher is the subset of billing.Producer the payment handler
// needs; nil disables publication.
type billEventPublisher interface {
	Publish(event billing.Event)
}

func handleGetBill(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bill models.Bill
		if err := db.Preload("Tenant").Where("id = ?", c.Param("id")).First(&bill).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Bill not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch bill")
			}
			return
		}
		utils.OKResponse(c, "Bill retrieved successfully", bill)
	}
}

// handleMarkBillPaid records a payment. Paying an already-paid bill is a
// no-op: the original payment timestamp is kept and no event is re-published.
func handleMarkBillPaid(db *gorm.DB, events billEventPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bill models.Bill
		if err := db.Where("id = ?", c.Param("id")).First(&bill).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Bill not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch bill")
			}
			return
		}

		if bill.IsPaid {
			utils.OKResponse(c, "Bill already paid", bill)
			return
		}

		now := time.Now()
		updates := map[string]interface{}{
			"is_paid": true,
			"paid_at": now,
		}
		if err := db.Model(&bill).Updates(updates).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to mark bill as paid")
			return
		}
		bill.IsPaid = true
		bill.PaidAt = &now

		if events != nil {
			events.Publish(billing.Event{
				Type:     billing.EventBillPaid,
				BillID:   bill.ID,
				TenantID: bill.TenantID,
				Month:    bill.Month,
				Year:     bill.Year,
				Amount:   bill.Amount,
			})
		}

		utils.OKResponse(c, "Bill marked as paid", bill)
	}
}

// handleGenerateBills triggers a generation run on demand. The run applies
// the same last-day-of-month gate as the scheduled job, so calling it
// mid-month is a harmless no-op.
func handleGenerateBills(generator *billing.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := generator.Run(c.Request.Context())
		if err != nil {
			utils.InternalServerErrorResponse(c, "Bill generation failed")
			return
		}
		utils.OKResponse(c, "Bill generation run complete", summary)
	}
}

// handleGetReceipt renders the French rent receipt PDF for a paid bill.
// archiver may be nil when S3 archiving is disabled.
func handleGetReceipt(db *gorm.DB, archiver *receipt.Archiver) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := receipt.LoadData(db, c.Param("id"))
		if err != nil {
			switch {
			case errors.Is(err, receipt.ErrNotFound):
				utils.NotFoundResponse(c, "Bill not found")
			case errors.Is(err, receipt.ErrUnpaidBill):
				utils.BadRequestResponse(c, "Cannot generate a receipt for an unpaid bill")
			default:
				utils.InternalServerErrorResponse(c, "Failed to load receipt data")
			}
			return
		}

		pdf, err := receipt.Render(data, time.Now())
		if err != nil {
			logrus.WithError(err).WithField("bill_id", data.Bill.ID).
				Error("Receipt rendering failed")
			utils.InternalServerErrorResponse(c, "Failed to render receipt")
			return
		}

		if archiver != nil {
			bill := data.Bill
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := archiver.Archive(ctx, &bill, pdf); err != nil {
					logrus.WithError(err).WithField("bill_id", bill.ID).
						Warn("Receipt archiving failed")
				}
			}()
		}

		utils.PDFResponse(c, receipt.Filename(data.Bill.ID), pdf)
	}
}
