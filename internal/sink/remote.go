package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

// Remote forwards the order to a sink function endpoint, such as another
// instance's /functions/append-order, and relays its answer.
type Remote struct {
	name    string
	url     string
	failMsg string
	client  *http.Client
}

// NewRemote returns a sink posting to url. An empty url yields an
// unconfigured sink whose sends fail.
func NewRemote(name, url, failMsg string, client *http.Client) *Remote {
	if client == nil {
		client = defaultHTTPClient()
	}
	return &Remote{name: name, url: url, failMsg: failMsg, client: client}
}

// NewRemoteSheets posts to a remote append-order function.
func NewRemoteSheets(url string, client *http.Client) *Remote {
	return NewRemote("googleSheets", url, "خطأ في حفظ الطلب في Google Sheets", client)
}

// NewRemoteTelegram posts to a remote send-telegram function.
func NewRemoteTelegram(url string, client *http.Client) *Remote {
	return NewRemote("telegram", url, "خطأ في إرسال الطلب إلى Telegram", client)
}

func (r *Remote) Name() string { return r.name }

func (r *Remote) Configured() bool { return r.url != "" }

type remoteResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (r *Remote) Send(ctx context.Context, p model.OrderPayload) model.SinkResult {
	if r.url == "" {
		return failure(r.failMsg, fmt.Errorf("no endpoint configured for %s", r.name))
	}
	body, err := json.Marshal(p)
	if err != nil {
		return failure(r.failMsg, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return failure(r.failMsg, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return failure(r.failMsg, err)
	}
	defer resp.Body.Close()

	var rr remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return failure(r.failMsg, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err))
	}
	if resp.StatusCode/100 != 2 || !rr.Success {
		msg := rr.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return failure(r.failMsg, errors.New(msg))
	}
	return model.SinkResult{Success: true, OrderID: rr.OrderID, Message: rr.Message}
}
