package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fairyhunter13/amiral-order-service/internal/catalog"
	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

// ErrMissingTelegramCredentials is returned when the bot token or chat id is unset.
var ErrMissingTelegramCredentials = errors.New("missing telegram credentials")

// TelegramConfig holds the Bot API credentials.
type TelegramConfig struct {
	APIURL   string
	BotToken string
	ChatID   string
}

// Telegram posts a formatted order message to a chat through the Bot API.
type Telegram struct {
	cfg    TelegramConfig
	line   catalog.ProductLine
	client *http.Client
	now    func() time.Time
}

// NewTelegram returns a Telegram sink. A nil client uses a 15s-timeout default.
func NewTelegram(cfg TelegramConfig, line catalog.ProductLine, client *http.Client) *Telegram {
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.telegram.org"
	}
	if client == nil {
		client = defaultHTTPClient()
	}
	return &Telegram{cfg: cfg, line: line, client: client, now: time.Now}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Configured() bool { return t.cfg.BotToken != "" && t.cfg.ChatID != "" }

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type botResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Send(ctx context.Context, p model.OrderPayload) model.SinkResult {
	const failMsg = "خطأ في إرسال الطلب إلى Telegram"
	if !t.Configured() {
		return failure(failMsg, ErrMissingTelegramCredentials)
	}
	now := t.now()
	orderID := NewOrderID(now)
	body, err := json.Marshal(sendMessageRequest{
		ChatID:                t.cfg.ChatID,
		Text:                  t.FormatMessage(p, orderID, now),
		DisableWebPagePreview: true,
	})
	if err != nil {
		return failure(failMsg, err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(t.cfg.APIURL, "/"), t.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return failure(failMsg, errors.New("invalid Telegram API url"))
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		// the url embeds the bot token
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return failure(failMsg, err)
	}
	defer resp.Body.Close()
	var br botResponse
	_ = json.NewDecoder(resp.Body).Decode(&br)
	if resp.StatusCode/100 != 2 || !br.OK {
		desc := br.Description
		if desc == "" {
			desc = "Telegram API error"
		}
		return failure(failMsg, errors.New(desc))
	}
	return model.SinkResult{Success: true, OrderID: orderID, Message: "تم إرسال الطلب إلى Telegram بنجاح"}
}

// FormatMessage renders the chat message for one order.
func (t *Telegram) FormatMessage(p model.OrderPayload, orderID string, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 طلب جديد - %s\n\n", t.line.ProductName)
	fmt.Fprintf(&b, "👤 الاسم: %s\n", p.FullName)
	fmt.Fprintf(&b, "📱 الهاتف: %s\n", p.Phone)
	fmt.Fprintf(&b, "📱 هاتف بديل: %s\n", orDefault(p.AltPhone, "غير محدد"))
	fmt.Fprintf(&b, "📍 الولاية: %s\n", p.Wilaya)
	fmt.Fprintf(&b, "🏘️ البلدية: %s\n", p.Baladia)
	fmt.Fprintf(&b, "🚚 نوع التوصيل: %s\n", deliveryLabel(p.DeliveryType))
	if p.CupTypeArabic != "" && len(t.line.Variants()) > 1 {
		fmt.Fprintf(&b, "🥤 النوع: %s\n", p.CupTypeArabic)
	}
	fmt.Fprintf(&b, "📦 الكمية: %d %s\n", p.Quantity, t.unitName(p.Unit))
	if p.TotalCups > 0 {
		fmt.Fprintf(&b, "📊 إجمالي: %d كيس = %d كأس\n", p.EffectiveBase, p.TotalCups)
	}
	if p.PricingTier != "" {
		fmt.Fprintf(&b, "🏷️ نوع السعر: %s\n", p.PricingTier)
	}
	if p.DeliveryPrice > 0 {
		fmt.Fprintf(&b, "🚚 سعر التوصيل: %d دج\n", p.DeliveryPrice)
	} else if t.line.FreeDelivery {
		b.WriteString("🚚 التوصيل: مجاني\n")
	}
	fmt.Fprintf(&b, "💰 السعر الإجمالي: %d دج\n", p.TotalPrice)
	fmt.Fprintf(&b, "📝 ملاحظات: %s\n\n", orDefault(p.Notes, "لا توجد"))
	fmt.Fprintf(&b, "⏰ الوقت: %s\n", FormatTimestamp(at))
	fmt.Fprintf(&b, "🔍 معرف الطلب: %s", orderID)
	return b.String()
}

func (t *Telegram) unitName(id string) string {
	if u, ok := t.line.Unit(id); ok {
		return u.NameArabic
	}
	return id
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
