package model

import (
	"context"
	"time"
)

// Classifier maps free text onto a scenario label. Unclear input yields a
// low-confidence result, never an error; errors indicate transport failures.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// Extractor performs LLM-backed structured field extraction. Returned records
// may be incomplete; validation is the caller's responsibility. Errors are
// transport/infra failures only.
type Extractor interface {
	ExtractDelivery(ctx context.Context, text string) (*DeliveryInfo, error)
	ExtractProductOrder(ctx context.Context, text string) (*ProductOrderInfo, error)
	ExtractMetalCalc(ctx context.Context, text string) (*MetalCalcInfo, error)
	// ExtractRegistration reads a business registration certificate image.
	ExtractRegistration(ctx context.Context, imageURL string) (*RegistrationInfo, error)
}

// DocumentTemplate identifies a document layout.
type DocumentTemplate string

const (
	TemplateDeliveryNote   DocumentTemplate = "delivery_note"
	TemplateTradeStatement DocumentTemplate = "trade_statement"
)

// Artifacts are the file outputs of a document render.
type Artifacts struct {
	DocxPath   string
	PDFPath    string
	ImagePaths []string
}

// DocumentRenderer fills a template and converts it to PDF/images.
type DocumentRenderer interface {
	Render(ctx context.Context, tmpl DocumentTemplate, fields map[string]string) (*Artifacts, error)
}

// Printer dispatches a rendered PDF to the office printer. A failure is
// non-fatal to the conversation.
type Printer interface {
	Send(ctx context.Context, pdfPath string, subject string) error
}

// RegistrationResult is the identity assigned to a persisted registration.
type RegistrationResult struct {
	ID      int64
	ERPCode int64
}

// RegistrationRecord is the identifying slice of a stored registration,
// returned on duplicate-key lookups.
type RegistrationRecord struct {
	ID             int64
	ERPCode        int64
	ClientName     string
	BusinessName   string
	BusinessNumber string
	CreatedAt      time.Time
}

// RegistrationRepository persists business registration records. Insert fails
// with errx.ErrDuplicateBusinessNumber when the business-number unique
// constraint is violated; FindByBusinessNumber fails with
// errx.ErrRegistrationNotFound on a miss.
type RegistrationRepository interface {
	Insert(ctx context.Context, info *RegistrationInfo) (*RegistrationResult, error)
	FindByBusinessNumber(ctx context.Context, number string) (*RegistrationRecord, error)
}
