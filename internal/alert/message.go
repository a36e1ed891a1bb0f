package alert

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/domain"
)

const (
	TypeError   = "error"
	TypeWarning = "warning"

	DirectionHigh = "high"
	DirectionLow  = "low"
)

const (
	criticalPrefix = "🚨 ALERTE CRITIQUE"
	warningPrefix  = "⚠️ Attention"
)

// BuildAlertMessages 为每个告警项生成一条用户消息，顺序与输入一致
func BuildAlertMessages(items []domain.AlertItem) []domain.AlertMessage {
	messages := make([]domain.AlertMessage, 0, len(items))
	for _, item := range items {
		messages = append(messages, buildMessage(item))
	}
	return messages
}

func buildMessage(a domain.AlertItem) domain.AlertMessage {
	msg := domain.AlertMessage{
		Type:        TypeWarning,
		Icon:        "ico-warning",
		ParameterID: a.ParameterID,
		Value:       a.Value,
		Unit:        a.Unit,
		Timestamp:   a.Timestamp,
	}
	prefix := warningPrefix
	if a.IsCritical {
		msg.Type = TypeError
		msg.Icon = "ico-error"
		prefix = criticalPrefix
	}
	msg.Title = prefix + " — " + a.DisplayName

	// 同时高于上限和低于下限时以上限为准
	switch {
	case a.IsAboveMax:
		msg.Direction = DirectionHigh
		msg.Threshold = a.MaxThreshold
	case a.IsBelowMin:
		msg.Direction = DirectionLow
		msg.Threshold = a.MinThreshold
	default:
		msg.Direction = DirectionHigh
		msg.Threshold = a.MaxThreshold
	}

	val := FormatNumber(a.Value)
	switch {
	case a.IsAboveMax && a.MaxThreshold != nil:
		msg.Message = fmt.Sprintf("Valeur haute : %s %s (seuil max : %s %s)", val, a.Unit, FormatNumber(*a.MaxThreshold), a.Unit)
	case a.IsBelowMin && a.MinThreshold != nil:
		msg.Message = fmt.Sprintf("Valeur basse : %s %s (seuil min : %s %s)", val, a.Unit, FormatNumber(*a.MinThreshold), a.Unit)
	default:
		msg.Message = fmt.Sprintf("Valeur actuelle : %s %s", val, a.Unit)
	}
	return msg
}

// FormatNumber 一位小数，逗号作小数点，空格作千位分隔（1234.56 -> "1 234,6"）
func FormatNumber(v float64) string {
	v = math.Round(v*10) / 10
	s := strconv.FormatFloat(math.Abs(v), 'f', 1, 64)
	intPart, frac := s[:len(s)-2], s[len(s)-1:]

	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
