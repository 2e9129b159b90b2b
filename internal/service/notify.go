package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// TableNotifier pings an external renderer whenever a chunk set contains
// table chunks. Delivery is best effort; a lost notification never fails
// the ingest.
type TableNotifier struct {
	url    string
	client *http.Client
}

func NewTableNotifier(url string, timeout time.Duration) *TableNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TableNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type tableNotifyPayload struct {
	DocumentID  string `json:"document_id"`
	TableChunks int    `json:"table_chunks"`
}

func (n *TableNotifier) NotifyAsync(documentID string, tableChunks int) {
	if n == nil || n.url == "" || tableChunks == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.client.Timeout)
		defer cancel()
		data, err := json.Marshal(tableNotifyPayload{DocumentID: documentID, TableChunks: tableChunks})
		if err != nil {
			return
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(data))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := n.client.Do(req)
		if err != nil {
			logutil.GetLogger(ctx).Warn("table notify failed",
				zap.String("document_id", documentID), zap.Error(err))
			return
		}
		_ = resp.Body.Close()
		if resp.StatusCode >= http.StatusBadRequest {
			logutil.GetLogger(ctx).Warn("table notify rejected",
				zap.String("document_id", documentID), zap.Int("status", resp.StatusCode))
		}
	}()
}
