package swap

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rewear-api/internal/domain"
	"rewear-api/internal/notify"
	"rewear-api/pkg/utils"
)

// Engine swap 生命周期的唯一写入方。
// 每个操作跑在一个事务里，状态迁移全部走条件 UPDATE（CAS），
// 并发的两个 accept 只有一个能命中 pending，积分转账不会重复入账。
type Engine struct {
	db    *gorm.DB
	log   *zap.Logger
	sink  notify.Sink
	now   func() time.Time
	evict func(ctx context.Context, itemIDs ...string)
}

func NewEngine(db *gorm.DB, log *zap.Logger, sink notify.Sink) *Engine {
	return &Engine{db: db, log: log, sink: sink, now: time.Now}
}

// OnItemStatusChange 注册物品状态变更后的回调，用于剔除详情缓存
func (e *Engine) OnItemStatusChange(fn func(ctx context.Context, itemIDs ...string)) {
	e.evict = fn
}

func (e *Engine) evictItems(ctx context.Context, ids ...string) {
	if e.evict != nil {
		e.evict(ctx, ids...)
	}
}

type CreateInput struct {
	RequestedItemID string
	OfferedItemID   string
	PointsOffered   int
	Message         string
}

// Create 发起 swap 请求。前置校验按序执行，首个失败即返回
func (e *Engine) Create(ctx context.Context, requesterID string, in CreateInput) (*domain.Swap, error) {
	var created *domain.Swap

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := NewCatalog(tx)
		users := NewLedger(tx)
		swaps := newSwapRepo(tx)

		item, err := items.Get(in.RequestedItemID)
		if err != nil {
			return errInternal("load requested item failed", err)
		}
		if item == nil {
			return errNotFound("Requested item not found")
		}
		if !item.Swappable() {
			return errConflict("Item is not available for swap")
		}
		if item.OwnerID == requesterID {
			return errConflict("Cannot swap your own item")
		}

		// 二选一：押物品或押积分
		if in.OfferedItemID != "" && in.PointsOffered > 0 {
			return errInvalid("Cannot offer both an item and points")
		}
		if in.OfferedItemID == "" && in.PointsOffered <= 0 {
			return errInvalid("Either an offered item or points must be provided")
		}

		if in.OfferedItemID != "" {
			offered, err := items.Get(in.OfferedItemID)
			if err != nil {
				return errInternal("load offered item failed", err)
			}
			if offered == nil {
				return errNotFound("Offered item not found")
			}
			if offered.OwnerID != requesterID {
				return errForbidden("You can only offer items you own")
			}
			if !offered.Swappable() {
				return errConflict("Offered item is not available for swap")
			}
		}

		if in.PointsOffered > 0 {
			balance, err := users.Balance(requesterID)
			if err != nil {
				return errInternal("load requester failed", err)
			}
			if balance < in.PointsOffered {
				return errConflict("Insufficient points")
			}
		}

		dup, err := swaps.HasPendingRequest(requesterID, in.RequestedItemID)
		if err != nil {
			return errInternal("check existing swaps failed", err)
		}
		if dup {
			return errConflict("You already have a pending swap request for this item")
		}

		s := &domain.Swap{
			ID:              utils.NewID(),
			RequesterID:     requesterID,
			OwnerID:         item.OwnerID,
			RequestedItemID: in.RequestedItemID,
			OfferedItemID:   in.OfferedItemID,
			PointsOffered:   in.PointsOffered,
			Status:          domain.SwapPending,
			Message:         strings.TrimSpace(in.Message),
		}
		if err := swaps.Create(s); err != nil {
			return errInternal("create swap failed", err)
		}
		created = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notifyRequested(created)
	return created, nil
}

// Accept 物主接受。积分扣付与双方入账在同一事务内，
// 余额复查失败只让本次 accept 失败，swap 保持 pending（可重试或 reject）
func (e *Engine) Accept(ctx context.Context, actorID, swapID string) (*domain.Swap, error) {
	var accepted *domain.Swap

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := NewCatalog(tx)
		users := NewLedger(tx)
		swaps := newSwapRepo(tx)

		s, err := swaps.FindByID(swapID)
		if err != nil {
			return errInternal("load swap failed", err)
		}
		if s == nil {
			return errNotFound("Swap request not found")
		}
		if s.OwnerID != actorID {
			return errForbidden("Not authorized to accept this swap")
		}
		if s.Status != domain.SwapPending {
			return errConflict("Swap request is no longer pending")
		}

		// CAS：并发 accept 只放行一个
		ok, err := swaps.UpdateStatusIf(swapID, domain.SwapPending, domain.SwapAccepted, nil)
		if err != nil {
			return errInternal("update swap failed", err)
		}
		if !ok {
			return errConflict("Swap request is no longer pending")
		}

		if s.PointsOffered > 0 {
			// 扣付与入账同事务，要么都成要么都不成
			paid, err := users.Debit(s.RequesterID, s.PointsOffered)
			if err != nil {
				return errInternal("debit requester failed", err)
			}
			if !paid {
				return errConflict("Requester no longer has sufficient points")
			}
			if err := users.Credit(s.OwnerID, s.PointsOffered); err != nil {
				return errInternal("credit owner failed", err)
			}
		}

		// 锁定物品：进入「协商中」，不再接受新 offer
		locked, err := items.Lock(s.RequestedItemID, domain.ItemPending)
		if err != nil {
			return errInternal("lock requested item failed", err)
		}
		if !locked {
			return errConflict("Item is not available for swap")
		}
		if s.OfferedItemID != "" {
			// 押品可能已被另一个 swap 当作 requestedItem 锁走
			locked, err := items.Lock(s.OfferedItemID, domain.ItemPending)
			if err != nil {
				return errInternal("lock offered item failed", err)
			}
			if !locked {
				return errConflict("Offered item is no longer available")
			}
		}

		s.Status = domain.SwapAccepted
		accepted = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	if accepted.OfferedItemID != "" {
		e.evictItems(ctx, accepted.RequestedItemID, accepted.OfferedItemID)
	} else {
		e.evictItems(ctx, accepted.RequestedItemID)
	}
	e.notifyAccepted(accepted)
	return accepted, nil
}

// Reject 物主拒绝，必须给理由。pending 阶段物品从未被锁，无需解锁
func (e *Engine) Reject(ctx context.Context, actorID, swapID, reason string) (*domain.Swap, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errInvalid("Rejection reason is required")
	}
	if len(reason) > 300 {
		return nil, errInvalid("Rejection reason cannot exceed 300 characters")
	}

	var rejected *domain.Swap
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		swaps := newSwapRepo(tx)

		s, err := swaps.FindByID(swapID)
		if err != nil {
			return errInternal("load swap failed", err)
		}
		if s == nil {
			return errNotFound("Swap request not found")
		}
		if s.OwnerID != actorID {
			return errForbidden("Not authorized to reject this swap")
		}
		if s.Status != domain.SwapPending {
			return errConflict("Swap request is no longer pending")
		}

		ok, err := swaps.UpdateStatusIf(swapID, domain.SwapPending, domain.SwapRejected,
			map[string]any{"rejection_reason": reason})
		if err != nil {
			return errInternal("update swap failed", err)
		}
		if !ok {
			return errConflict("Swap request is no longer pending")
		}

		s.Status = domain.SwapRejected
		s.RejectionReason = reason
		rejected = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notifyRejected(rejected)
	return rejected, nil
}

// Complete 任意一方都可以标记完成（线下交接后），终态，物品转 swapped
func (e *Engine) Complete(ctx context.Context, actorID, swapID string) (*domain.Swap, error) {
	var completed *domain.Swap

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := NewCatalog(tx)
		swaps := newSwapRepo(tx)

		s, err := swaps.FindByID(swapID)
		if err != nil {
			return errInternal("load swap failed", err)
		}
		if s == nil {
			return errNotFound("Swap request not found")
		}
		if s.RequesterID != actorID && s.OwnerID != actorID {
			return errForbidden("Not authorized to complete this swap")
		}
		if s.Status != domain.SwapAccepted {
			return errConflict("Swap must be accepted before completion")
		}

		at := e.now().UTC()
		ok, err := swaps.UpdateStatusIf(swapID, domain.SwapAccepted, domain.SwapCompleted,
			map[string]any{"completed_at": at})
		if err != nil {
			return errInternal("update swap failed", err)
		}
		if !ok {
			return errConflict("Swap must be accepted before completion")
		}

		if _, err := items.Release(s.RequestedItemID, domain.ItemSwapped); err != nil {
			return errInternal("update requested item failed", err)
		}
		if s.OfferedItemID != "" {
			if _, err := items.Release(s.OfferedItemID, domain.ItemSwapped); err != nil {
				return errInternal("update offered item failed", err)
			}
		}

		s.Status = domain.SwapCompleted
		s.CompletedAt = &at
		completed = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed.OfferedItemID != "" {
		e.evictItems(ctx, completed.RequestedItemID, completed.OfferedItemID)
	} else {
		e.evictItems(ctx, completed.RequestedItemID)
	}
	return completed, nil
}

// List 我参与的 swap（requester 或 owner），按创建时间倒序分页
func (e *Engine) List(ctx context.Context, userID, status string, offset, limit int) ([]domain.Swap, int64, error) {
	swaps := newSwapRepo(e.db.WithContext(ctx))
	list, total, err := swaps.ListForUser(userID, status, offset, limit)
	if err != nil {
		return nil, 0, errInternal("list swaps failed", err)
	}
	e.hydrate(ctx, list)
	return list, total, nil
}

// hydrate 回填列表用的关联摘要；失败只记日志，不影响主数据
func (e *Engine) hydrate(ctx context.Context, list []domain.Swap) {
	items := NewCatalog(e.db.WithContext(ctx))
	users := NewLedger(e.db.WithContext(ctx))
	for i := range list {
		s := &list[i]
		if u, err := users.Get(s.RequesterID); err == nil && u != nil {
			s.Requester = publicUser(u)
		}
		if u, err := users.Get(s.OwnerID); err == nil && u != nil {
			s.Owner = publicUser(u)
		}
		if it, err := items.Get(s.RequestedItemID); err == nil {
			s.RequestedItem = it
		}
		if s.OfferedItemID != "" {
			if it, err := items.Get(s.OfferedItemID); err == nil {
				s.OfferedItem = it
			}
		}
	}
}

func publicUser(u *domain.User) *domain.User {
	return &domain.User{ID: u.ID, FullName: u.FullName, Email: u.Email}
}

func (e *Engine) notifyRequested(s *domain.Swap) {
	users := NewLedger(e.db)
	items := NewCatalog(e.db)
	owner, err := users.Get(s.OwnerID)
	if err != nil || owner == nil {
		e.log.Warn("swap requested: owner lookup failed", zap.String("swap", s.ID), zap.Error(err))
		return
	}
	requester, _ := users.Get(s.RequesterID)
	item, _ := items.Get(s.RequestedItemID)
	name, title := "", ""
	if requester != nil {
		name = requester.FullName
	}
	if item != nil {
		title = item.Title
	}
	notify.Dispatch(e.log, e.sink, notify.SwapRequested(owner.Email, name, title))
}

func (e *Engine) notifyAccepted(s *domain.Swap) {
	users := NewLedger(e.db)
	items := NewCatalog(e.db)
	requester, err := users.Get(s.RequesterID)
	if err != nil || requester == nil {
		e.log.Warn("swap accepted: requester lookup failed", zap.String("swap", s.ID), zap.Error(err))
		return
	}
	owner, _ := users.Get(s.OwnerID)
	item, _ := items.Get(s.RequestedItemID)
	name, title := "", ""
	if owner != nil {
		name = owner.FullName
	}
	if item != nil {
		title = item.Title
	}
	notify.Dispatch(e.log, e.sink, notify.SwapAccepted(requester.Email, name, title))
}

func (e *Engine) notifyRejected(s *domain.Swap) {
	users := NewLedger(e.db)
	items := NewCatalog(e.db)
	requester, err := users.Get(s.RequesterID)
	if err != nil || requester == nil {
		e.log.Warn("swap rejected: requester lookup failed", zap.String("swap", s.ID), zap.Error(err))
		return
	}
	owner, _ := users.Get(s.OwnerID)
	item, _ := items.Get(s.RequestedItemID)
	name, title := "", ""
	if owner != nil {
		name = owner.FullName
	}
	if item != nil {
		title = item.Title
	}
	notify.Dispatch(e.log, e.sink, notify.SwapRejected(requester.Email, name, title, s.RejectionReason))
}
