// Package selection 记录用户当前查看的患者
package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/DashMed-france/DashMed-SAE-sub002/internal/store"
)

// ErrNoSelection 用户没有选择过患者
var ErrNoSelection = errors.New("no patient selected")

const keyPrefix = "monitoring:selection:user:"

// Selection 存储内容
type Selection struct {
	PatientID  int64     `json:"patient_id"`
	SelectedAt time.Time `json:"selected_at"`
}

// Store 基于 KV 的选择存储
type Store struct {
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewStore 创建选择存储
func NewStore(kv store.KV, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{kv: kv, ttl: ttl, logger: logger, now: time.Now}
}

func key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

// Save 记录当前患者
func (s *Store) Save(ctx context.Context, userID, patientID int64) error {
	raw, err := json.Marshal(Selection{PatientID: patientID, SelectedAt: s.now().UTC()})
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, key(userID), string(raw), s.ttl); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

// Current 读取当前患者；未选择或记录损坏时返回 ErrNoSelection
func (s *Store) Current(ctx context.Context, userID int64) (Selection, error) {
	raw, err := s.kv.Get(ctx, key(userID))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return Selection{}, ErrNoSelection
		}
		return Selection{}, fmt.Errorf("read selection: %w", err)
	}
	var sel Selection
	if err := json.Unmarshal([]byte(raw), &sel); err != nil || sel.PatientID <= 0 {
		s.logger.Warn("Discarding malformed selection",
			zap.Int64("user_id", userID),
			zap.String("raw", raw),
		)
		return Selection{}, ErrNoSelection
	}
	return sel, nil
}

// Clear 删除选择
func (s *Store) Clear(ctx context.Context, userID int64) error {
	if err := s.kv.Del(ctx, key(userID)); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}

// Resolve 确定请求对应的患者：显式指定的优先并被记住，否则使用已保存的选择
// 保存失败不影响本次请求
func (s *Store) Resolve(ctx context.Context, userID int64, explicit *int64) (int64, error) {
	if explicit != nil && *explicit > 0 {
		if err := s.Save(ctx, userID, *explicit); err != nil {
			s.logger.Warn("Failed to remember patient selection",
				zap.Int64("user_id", userID),
				zap.Int64("patient_id", *explicit),
				zap.Error(err),
			)
		}
		return *explicit, nil
	}
	sel, err := s.Current(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNoSelection) {
			s.logger.Warn("Failed to read patient selection",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
		return 0, ErrNoSelection
	}
	return sel.PatientID, nil
}
