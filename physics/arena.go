package physics

import "github.com/pkg/errors"

// handle 是带代数的槽位引用：槽位复用后旧 handle 失效
type handle struct {
	index uint32
	gen   uint32
}

// BodyHandle 刚体引用
type BodyHandle handle

// ColliderHandle 碰撞体引用
type ColliderHandle handle

// JointHandle 关节引用
type JointHandle handle

// IsZero 零值 handle 从不指向任何对象
func (h BodyHandle) IsZero() bool { return h.gen == 0 }

// IsZero 零值 handle 从不指向任何对象
func (h ColliderHandle) IsZero() bool { return h.gen == 0 }

// IsZero 零值 handle 从不指向任何对象
func (h JointHandle) IsZero() bool { return h.gen == 0 }

type slot[T any] struct {
	gen  uint32
	live bool
	val  T
}

// arena 为 handle 提供 O(1) 插入/查找/删除，并按槽位顺序遍历
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

func (a *arena[T]) insert(v T) handle {
	a.count++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.gen++
		s.live = true
		s.val = v
		return handle{index: idx, gen: s.gen}
	}
	a.slots = append(a.slots, slot[T]{gen: 1, live: true, val: v})
	return handle{index: uint32(len(a.slots) - 1), gen: 1}
}

func (a *arena[T]) get(h handle) (T, bool) {
	var zero T
	if int(h.index) >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[h.index]
	if !s.live || s.gen != h.gen {
		return zero, false
	}
	return s.val, true
}

func (a *arena[T]) remove(h handle) (T, bool) {
	v, ok := a.get(h)
	if !ok {
		return v, false
	}
	s := &a.slots[h.index]
	var zero T
	s.live = false
	s.val = zero
	a.free = append(a.free, h.index)
	a.count--
	return v, true
}

func (a *arena[T]) each(fn func(h handle, v T)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.live {
			fn(handle{index: uint32(i), gen: s.gen}, s.val)
		}
	}
}

func staleHandle(kind string, h handle) error {
	return errors.Errorf("physics: stale %s handle %d/%d", kind, h.index, h.gen)
}
