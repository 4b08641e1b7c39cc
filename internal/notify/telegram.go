package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jongga/internal/pkg/text"
)

// Telegram sendMessage 텍스트 상한(4096)보다 여유 있게 자른다
const maxMessageRunes = 4000

// 中文说明：
// Telegram 文本推送。진입/청산/레짐 전환 이벤트를 한 줄 텍스트로 발송한다。

// TextNotifier 最小化的文本推送接口
type TextNotifier interface {
	SendText(msg string) error
}

// Telegram Bot API 推送器
type Telegram struct {
	botToken string
	chatID   string
	client   *http.Client
}

// NewTelegram 构造推送器
func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

var _ TextNotifier = (*Telegram)(nil)

// SendText 发送纯文本消息
func (t *Telegram) SendText(msg string) error {
	payload := map[string]any{
		"chat_id": t.chatID,
		"text":    text.Truncate(msg, maxMessageRunes),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram payload 직렬화 실패: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken)
	resp, err := t.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("telegram 전송 실패: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API 응답 코드 %d", resp.StatusCode)
	}
	return nil
}
