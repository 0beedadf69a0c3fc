package receipt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"

	"github.com/pverdier/go-gestion-locative/shared/models"
)

var (
	// ErrNotFound means the bill or a link of its ownership chain is missing.
	ErrNotFound = errors.New("bill or related record not found")
	// ErrUnpaidBill means a receipt was requested for a bill not yet paid.
	ErrUnpaidBill = errors.New("cannot generate receipt for unpaid bill")
)

// Data is everything a receipt needs, resolved across the ownership chain
// bill -> tenant -> unit -> property -> owner. Receipts are all-or-nothing:
// a partial chain never renders.
type Data struct {
	Bill     models.Bill
	Tenant   models.Tenant
	Unit     models.Unit
	Property models.Property
	Owner    models.User
}

// LoadData resolves the receipt data for a bill. Any missing link yields
// ErrNotFound; an unpaid bill yields ErrUnpaidBill.
func LoadData(db *gorm.DB, billID string) (*Data, error) {
	var d Data

	if err := first(db, &d.Bill, "id = ?", billID); err != nil {
		return nil, err
	}
	if err := first(db, &d.Tenant, "id = ?", d.Bill.TenantID); err != nil {
		return nil, err
	}
	if err := first(db, &d.Unit, "id = ?", d.Tenant.UnitID); err != nil {
		return nil, err
	}
	if err := first(db, &d.Property, "id = ?", d.Unit.PropertyID); err != nil {
		return nil, err
	}
	if err := first(db, &d.Owner, "id = ?", d.Property.OwnerID); err != nil {
		return nil, err
	}

	if !d.Bill.IsPaid {
		return nil, ErrUnpaidBill
	}
	return &d, nil
}

func first(db *gorm.DB, dest interface{}, query string, args ...interface{}) error {
	err := db.Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load receipt data: %w", err)
	}
	return nil
}

// Filename returns the download filename for a bill's receipt.
func Filename(billID string) string {
	return fmt.Sprintf("quittance-%s.pdf", billID)
}

// Render typesets the one-page A4 rent receipt and returns the PDF bytes.
// The signature line is stamped with now; the payment date line prefers the
// bill's PaidAt when recorded.
func Render(d *Data, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Title, centered on the page width.
	pdf.SetFont("Helvetica", "B", 19.5)
	title := fmt.Sprintf("Quittance de loyer du %d/%d", d.Bill.Month, d.Bill.Year)
	pdf.Text((210-pdf.GetStringWidth(tr(title)))/2, 30, tr(title))

	// Tenant mailing block, addressed at the unit's physical location.
	const (
		addrX = 150.0
		addrY = 50.0
		step  = 6.0
	)
	addr := d.Property.Address
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(addrX, addrY, tr(strings.ToUpper(d.Tenant.LastName)+" "+d.Tenant.FirstName))
	pdf.Text(addrX, addrY+step, tr(addr.Street))
	pdf.Text(addrX, addrY+2*step, tr(addr.ZipCode+" "+addr.City))
	pdf.Text(addrX, addrY+3*step, tr(addr.Country))

	// Narrative paragraph.
	start, end := FormatPeriod(d.Bill.Month, d.Bill.Year)
	mainText := fmt.Sprintf(
		"Je soussigné %s, propriétaire du logement désigné ci-dessus, déclare avoir reçu de %s %s %s, "+
			"la somme de %.2f euros (%s euros), au titre du paiement du loyer et des charges pour la période "+
			"de location du %s au %s et lui en donne quittance, sous réserve de tous mes droits.",
		d.Owner.FullName(),
		Honorific(d.Tenant.Title), d.Tenant.LastName, d.Tenant.FirstName,
		d.Bill.Amount, AmountInWords(d.Bill.Amount),
		start, end,
	)
	pdf.SetFont("Helvetica", "", 13)
	pdf.SetXY(20, 84)
	pdf.MultiCell(170, 6, tr(mainText), "", "L", false)

	// Breakdown table.
	const (
		tableX  = 20.0
		tableY  = 120.0
		rowW    = 120.0
		rowH    = 8.0
		labelX  = 25.0
		amountX = 100.0
	)
	pdf.SetFont("Helvetica", "B", 11.5)
	pdf.Rect(tableX, tableY, rowW, rowH, "D")
	pdf.Text(labelX, tableY+5, tr("Désignation"))
	pdf.Text(amountX, tableY+5, tr("Montant (€)"))

	y := tableY + rowH
	pdf.SetFont("Helvetica", "", 11.5)
	pdf.Rect(tableX, y, rowW, rowH, "D")
	pdf.Text(labelX, y+5, tr("Loyer mensuel"))
	pdf.Text(amountX, y+5, fmt.Sprintf("%.2f", d.Tenant.MonthlyRent))
	y += rowH

	pdf.Rect(tableX, y, rowW, rowH, "D")
	pdf.Text(labelX, y+5, tr("Charges mensuelles"))
	pdf.Text(amountX, y+5, fmt.Sprintf("%.2f", d.Tenant.MonthlyCharge))
	y += rowH

	pdf.SetFont("Helvetica", "B", 11.5)
	pdf.Rect(tableX, y, rowW, rowH, "D")
	pdf.Text(labelX, y+5, "TOTAL")
	pdf.Text(amountX, y+5, fmt.Sprintf("%.2f", d.Bill.Amount))
	y += rowH

	paymentDate := now
	if d.Bill.PaidAt != nil {
		paymentDate = *d.Bill.PaidAt
	}
	pdf.SetFont("Helvetica", "", 11.5)
	pdf.Text(labelX, y+15, tr("Date de paiement : "+FormatDateFR(paymentDate)))

	signature := "Fait le " + FormatDateFR(now)
	if addr.City != "" {
		signature += " à " + addr.City
	}
	pdf.Text(120, y+30, tr(signature))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
