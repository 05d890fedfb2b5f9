package sink

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fairyhunter13/amiral-order-service/internal/catalog"
	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

// ErrMissingGoogleCredentials is returned when no spreadsheet backend is configured.
var ErrMissingGoogleCredentials = errors.New("missing google credentials")

// DefaultRange is the orders sheet and its sixteen columns.
const DefaultRange = "الطلبات!A:P"

// Header names the columns of an order row.
var Header = []string{
	"التاريخ", "معرف الطلب", "الاسم الكامل", "الهاتف", "هاتف بديل", "الولاية", "البلدية",
	"نوع التوصيل", "نوع الكأس", "الوحدة", "الكمية", "عدد الأكياس", "عدد الكؤوس", "نوع السعر",
	"السعر الإجمالي", "ملاحظات",
}

// RowAppender appends one row to a spreadsheet.
type RowAppender interface {
	AppendRow(ctx context.Context, row []any) error
}

// Sheets records each order as a spreadsheet row.
type Sheets struct {
	appender RowAppender
	line     catalog.ProductLine
	now      func() time.Time
}

// NewSheets returns a Sheets sink. A nil appender yields an unconfigured sink
// whose sends fail.
func NewSheets(appender RowAppender, line catalog.ProductLine) *Sheets {
	return &Sheets{appender: appender, line: line, now: time.Now}
}

func (s *Sheets) Name() string { return "googleSheets" }

func (s *Sheets) Configured() bool { return s.appender != nil }

func (s *Sheets) Send(ctx context.Context, p model.OrderPayload) model.SinkResult {
	const failMsg = "خطأ في حفظ الطلب في Google Sheets"
	if s.appender == nil {
		return failure(failMsg, ErrMissingGoogleCredentials)
	}
	now := s.now()
	orderID := NewOrderID(now)
	if err := s.appender.AppendRow(ctx, s.Row(p, orderID, now)); err != nil {
		return failure(failMsg, err)
	}
	return model.SinkResult{Success: true, OrderID: orderID, Message: "تم حفظ الطلب في Google Sheets بنجاح"}
}

// Row lays out an order in Header order.
func (s *Sheets) Row(p model.OrderPayload, orderID string, at time.Time) []any {
	unit := p.Unit
	if u, ok := s.line.Unit(p.Unit); ok {
		unit = u.NameArabic
	}
	cupType := p.CupTypeArabic
	if cupType == "" {
		cupType = p.CupType
	}
	return []any{
		FormatTimestamp(at),
		orderID,
		p.FullName,
		p.Phone,
		p.AltPhone,
		p.Wilaya,
		p.Baladia,
		deliveryLabel(p.DeliveryType),
		cupType,
		unit,
		p.Quantity,
		p.EffectiveBase,
		p.TotalCups,
		p.PricingTier,
		p.TotalPrice,
		p.Notes,
	}
}

// sheetName returns the tab part of an A1 range such as "Orders!A:P".
func sheetName(rng string) string {
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		return strings.Trim(rng[:i], "'")
	}
	return rng
}
