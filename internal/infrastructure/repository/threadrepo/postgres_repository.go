package threadrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"agri-api/internal/domain/status"
	"agri-api/internal/domain/thread"
	"agri-api/internal/infrastructure/database/entities"
	"agri-api/internal/utils/platformerrors"
)

// PostgresRepository provides persistence for threads, messages and runs.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ thread.Repository = (*PostgresRepository)(nil)

// CreateThread inserts a new thread.
func (r *PostgresRepository) CreateThread(ctx context.Context, t *thread.Thread) error {
	entity := entities.NewSchemaThread(t)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return dbError(ctx, "failed to create thread", err, "thread-create-error")
	}
	*t = *entity.EtoD()
	return nil
}

// GetThread loads a thread by id.
func (r *PostgresRepository) GetThread(ctx context.Context, id string) (*thread.Thread, error) {
	if !validID(id) {
		return nil, notFound(ctx, "thread not found", "thread-not-found")
	}
	var entity entities.Thread
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(ctx, "thread not found", "thread-not-found")
		}
		return nil, dbError(ctx, "failed to load thread", err, "thread-get-error")
	}
	return entity.EtoD(), nil
}

// ListThreads returns the user's threads, most recently active first.
func (r *PostgresRepository) ListThreads(ctx context.Context, userID string) ([]*thread.Thread, error) {
	var rows []entities.Thread
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_message_at DESC NULLS LAST").
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, dbError(ctx, "failed to list threads", err, "thread-list-error")
	}
	out := make([]*thread.Thread, 0, len(rows))
	for i := range rows {
		t := rows[i].EtoD()
		t.MessageCount = rows[i].MessageSeq
		out = append(out, t)
	}
	return out, nil
}

// UpdateThread persists the mutable thread fields.
func (r *PostgresRepository) UpdateThread(ctx context.Context, t *thread.Thread) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&entities.Thread{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{
			"title":      t.Title,
			"is_pinned":  t.IsPinned,
			"farm_id":    t.FarmID,
			"metadata":   datatypes.JSONMap(t.Metadata),
			"updated_at": now,
		})
	if res.Error != nil {
		return dbError(ctx, "failed to update thread", res.Error, "thread-update-error")
	}
	if res.RowsAffected == 0 {
		return notFound(ctx, "thread not found", "thread-not-found")
	}
	t.UpdatedAt = now
	return nil
}

// DeleteThread removes the thread, its messages and its runs in one transaction.
func (r *PostgresRepository) DeleteThread(ctx context.Context, id string) error {
	if !validID(id) {
		return notFound(ctx, "thread not found", "thread-not-found")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", id).Delete(&entities.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id = ?", id).Delete(&entities.Run{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entities.Thread{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return thread.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, thread.ErrNotFound) {
		return notFound(ctx, "thread not found", "thread-not-found")
	}
	if err != nil {
		return dbError(ctx, "failed to delete thread", err, "thread-delete-error")
	}
	return nil
}

// AppendMessage reserves the next position by incrementing the thread's
// counter and inserts the message in the same transaction. The row lock
// taken by the UPDATE serializes concurrent appends on one thread.
func (r *PostgresRepository) AppendMessage(ctx context.Context, threadID string, role thread.Role, content string, metadata map[string]any) (*thread.Message, error) {
	if !validID(threadID) {
		return nil, notFound(ctx, "thread not found", "thread-not-found")
	}

	var entity *entities.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entity, err = appendInTx(tx, threadID, role, content, metadata)
		return err
	})
	if errors.Is(err, thread.ErrNotFound) {
		return nil, notFound(ctx, "thread not found", "thread-not-found")
	}
	if err != nil {
		return nil, dbError(ctx, "failed to append message", err, "message-append-error")
	}
	return entity.EtoD(), nil
}

func appendInTx(tx *gorm.DB, threadID string, role thread.Role, content string, metadata map[string]any) (*entities.Message, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	var position int64
	res := tx.Raw(
		`UPDATE threads SET message_seq = message_seq + 1, last_message_at = ? WHERE id = ? RETURNING message_seq`,
		time.Now().UTC(), threadID,
	).Scan(&position)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, thread.ErrNotFound
	}
	entity := &entities.Message{
		ThreadID: threadID,
		Position: position,
		Role:     string(role),
		Content:  content,
		Metadata: datatypes.JSONMap(metadata),
	}
	if err := tx.Create(entity).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

// ListMessages returns the first limit messages in position order.
func (r *PostgresRepository) ListMessages(ctx context.Context, threadID string, limit int) ([]*thread.Message, error) {
	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("position ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, dbError(ctx, "failed to list messages", err, "message-list-error")
	}
	return messagesToDomain(rows), nil
}

// LoadRecentHistory returns the last limit messages, oldest first.
func (r *PostgresRepository) LoadRecentHistory(ctx context.Context, threadID string, limit int) ([]*thread.Message, error) {
	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("position DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, dbError(ctx, "failed to load history", err, "message-history-error")
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return messagesToDomain(rows), nil
}

// CountMessages returns how many messages a thread holds.
func (r *PostgresRepository) CountMessages(ctx context.Context, threadID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Message{}).Where("thread_id = ?", threadID).Count(&count).Error; err != nil {
		return 0, dbError(ctx, "failed to count messages", err, "message-count-error")
	}
	return count, nil
}

// CreateRun opens a run in the running state.
func (r *PostgresRepository) CreateRun(ctx context.Context, threadID string) (*thread.Run, error) {
	entity := &entities.Run{
		ThreadID:  threadID,
		Status:    string(status.StatusRunning),
		Metadata:  datatypes.JSONMap{},
		StartedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, dbError(ctx, "failed to create run", err, "run-create-error")
	}
	return entity.EtoD(), nil
}

// GetRun loads a run by id.
func (r *PostgresRepository) GetRun(ctx context.Context, id string) (*thread.Run, error) {
	if !validID(id) {
		return nil, notFound(ctx, "run not found", "run-not-found")
	}
	var entity entities.Run
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(ctx, "run not found", "run-not-found")
		}
		return nil, dbError(ctx, "failed to load run", err, "run-get-error")
	}
	return entity.EtoD(), nil
}

// FinalizeRun moves a non-terminal run to st. The WHERE clause makes the
// transition happen at most once.
func (r *PostgresRepository) FinalizeRun(ctx context.Context, runID string, st status.Status, metadata map[string]any, completedAt time.Time) (*thread.Run, error) {
	if !st.IsTerminal() {
		return nil, invalidState(ctx, "run can only be finalized with a terminal status")
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	res := r.db.WithContext(ctx).
		Model(&entities.Run{}).
		Where("id = ? AND status NOT IN ?", runID, terminalNames()).
		Updates(map[string]any{
			"status":       string(st),
			"metadata":     datatypes.JSONMap(metadata),
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return nil, dbError(ctx, "failed to finalize run", res.Error, "run-finalize-error")
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetRun(ctx, runID); err != nil {
			return nil, err
		}
		return nil, invalidState(ctx, "run is already finalized")
	}
	return r.GetRun(ctx, runID)
}

// CompleteRun flips the run to completed with a conditional UPDATE and only
// then appends the assistant message. If the reaper or another finalizer got
// there first the UPDATE matches nothing and the transaction rolls back.
func (r *PostgresRepository) CompleteRun(ctx context.Context, c thread.Completion) (*thread.Run, *thread.Message, error) {
	if !validID(c.RunID) {
		return nil, nil, notFound(ctx, "run not found", "run-not-found")
	}
	if !validID(c.ThreadID) {
		return nil, nil, notFound(ctx, "thread not found", "thread-not-found")
	}
	runMeta := c.RunMetadata
	if runMeta == nil {
		runMeta = map[string]any{}
	}

	var (
		run *entities.Run
		msg *entities.Message
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.Run{}).
			Where("id = ? AND thread_id = ? AND status NOT IN ?", c.RunID, c.ThreadID, terminalNames()).
			Updates(map[string]any{
				"status":       string(status.StatusCompleted),
				"metadata":     datatypes.JSONMap(runMeta),
				"completed_at": c.CompletedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return thread.ErrInvalidState
		}

		var err error
		if msg, err = appendInTx(tx, c.ThreadID, thread.RoleAssistant, c.Content, c.MessageMetadata); err != nil {
			return err
		}
		run = &entities.Run{}
		return tx.Where("id = ?", c.RunID).First(run).Error
	})
	switch {
	case errors.Is(err, thread.ErrInvalidState):
		if _, gerr := r.GetRun(ctx, c.RunID); gerr != nil {
			return nil, nil, gerr
		}
		return nil, nil, invalidState(ctx, "run is already finalized")
	case errors.Is(err, thread.ErrNotFound):
		return nil, nil, notFound(ctx, "thread not found", "thread-not-found")
	case err != nil:
		return nil, nil, dbError(ctx, "failed to complete run", err, "run-complete-error")
	}
	return run.EtoD(), msg.EtoD(), nil
}

// FailStaleRuns marks active runs started before cutoff as failed.
func (r *PostgresRepository) FailStaleRuns(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.Run{}).
		Where("status IN ? AND started_at < ?", []string{string(status.StatusPending), string(status.StatusRunning)}, cutoff).
		Updates(map[string]any{
			"status":       string(status.StatusFailed),
			"metadata":     datatypes.JSONMap{"error": reason},
			"completed_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, dbError(ctx, "failed to reap stale runs", res.Error, "run-reap-error")
	}
	return res.RowsAffected, nil
}

func messagesToDomain(rows []entities.Message) []*thread.Message {
	out := make([]*thread.Message, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out
}

func terminalNames() []string {
	terminal := status.TerminalStatuses()
	out := make([]string, 0, len(terminal))
	for _, s := range terminal {
		out = append(out, string(s))
	}
	return out
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(ctx context.Context, message, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, message, thread.ErrNotFound, code)
}

func invalidState(ctx context.Context, message string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict, message, thread.ErrInvalidState, "run-invalid-state")
}

func dbError(ctx context.Context, message string, err error, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, message, err, code)
}
