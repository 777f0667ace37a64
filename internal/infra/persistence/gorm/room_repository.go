package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chatroom-sync/internal/domain"
	"chatroom-sync/internal/repository"
)

// sortColumns 将对外的排序键映射到实际的列名。
// 白名单之外的键在 Service 层就被拒绝，这里只是最后一道防线。
var sortColumns = map[string]string{
	repository.SortByLastMessageAt: "last_message_at",
	repository.SortByUserCount:     "user_count",
	repository.SortByCreatedAt:     "created_at",
	repository.SortByMessageCount:  "message_count",
}

// GormRoomRepository 是 RoomRepository 接口的 GORM 实现
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository 创建 GormRoomRepository 实例
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepository")
	}
	return &GormRoomRepository{db: db}
}

// EnsureExists 实现按唯一房间名的 upsert 创建。
// name 上的唯一索引保证并发的首次加入只产生一行；冲突时 DoNothing，
// 然后重新读取已存在的行返回（first-join-wins）。
func (r *GormRoomRepository) EnsureExists(ctx context.Context, name, creator string) (*domain.Room, error) {
	roomData := domain.Room{
		Name:    name,
		Creator: creator,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&roomData).Error
	if err != nil {
		// OnConflict DoNothing 之外仍可能撞到唯一约束（取决于方言），一并兜底
		var mysqlErr *mysql.MySQLError
		if !(errors.As(err, &mysqlErr) && mysqlErr.Number == 1062) {
			return nil, fmt.Errorf("gorm: ensure room '%s' exists: %w", name, err)
		}
	}
	// 无论是新建还是冲突，都回读规范行（冲突时 Create 不会填充已有行的字段）
	return r.FindByName(ctx, name)
}

// FindByName 实现根据房间名查找房间
func (r *GormRoomRepository) FindByName(ctx context.Context, name string) (*domain.Room, error) {
	var roomData domain.Room
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&roomData).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by name '%s': %w", name, err)
	}
	return &roomData, nil
}

// IncrementUserCount 实现 user_count 的原子加 1。
// 必须是存储层的原子更新而不是读-改-写：多个引擎实例会并发更新同一行。
func (r *GormRoomRepository) IncrementUserCount(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("name = ?", name).
		UpdateColumn("user_count", gorm.Expr("user_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("gorm: increment user count for room '%s': %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrRoomNotFound
	}
	return nil
}

// DecrementUserCount 实现 user_count 的原子减 1，SQL 侧保证下限为 0。
func (r *GormRoomRepository) DecrementUserCount(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("name = ?", name).
		UpdateColumn("user_count", gorm.Expr("GREATEST(user_count - 1, 0)"))
	if result.Error != nil {
		return fmt.Errorf("gorm: decrement user count for room '%s': %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrRoomNotFound
	}
	return nil
}

// ApplyMessage 实现一条新消息对聚合的原子记账。
// 在同一个事务里：message_count 无条件加 1；last_message_* 三元组只在
// 新消息的时间戳不早于当前 last_message_at 时推进，保证其单调非递减
// （并发发送时较旧的消息不会把预览倒退回去）。
func (r *GormRoomRepository) ApplyMessage(ctx context.Context, name, username, preview string, msg *domain.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Room{}).
			Where("name = ?", name).
			UpdateColumn("message_count", gorm.Expr("message_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrRoomNotFound
		}

		return tx.Model(&domain.Room{}).
			Where("name = ? AND (last_message_at IS NULL OR last_message_at <= ?)", name, msg.Timestamp).
			UpdateColumns(map[string]interface{}{
				"last_message_at":      msg.Timestamp,
				"last_message_user":    username,
				"last_message_preview": preview,
			}).Error
	})
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return err
		}
		return fmt.Errorf("gorm: apply message to room '%s': %w", name, err)
	}
	return nil
}

// List 实现按白名单排序键的房间列表查询，并返回总数
func (r *GormRoomRepository) List(ctx context.Context, opts repository.ListOptions) ([]domain.Room, int64, error) {
	column, ok := sortColumns[opts.SortKey]
	if !ok {
		return nil, 0, fmt.Errorf("gorm: unsupported sort key '%s'", opts.SortKey)
	}
	direction := "DESC"
	if opts.Order == "asc" {
		direction = "ASC"
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Room{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("gorm: count rooms: %w", err)
	}

	var rooms []domain.Room
	err := r.db.WithContext(ctx).
		Order(fmt.Sprintf("%s %s", column, direction)).
		Limit(opts.Limit).
		Find(&rooms).Error
	if err != nil {
		return nil, 0, fmt.Errorf("gorm: list rooms: %w", err)
	}
	return rooms, total, nil
}
