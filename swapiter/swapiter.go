package swapiter

// SwapIter 让集合中的当前元素被临时取出，处理期间可以读写其余兄弟元素，
// 处理完成后再放回原位置。取出与放回均为 O(1)，不产生额外分配。
//
// 处理过程中追加到集合末尾的新元素会在同一轮被访问到。
// 处理过程中不得删除兄弟元素（用 despawn 标记，交给清扫阶段）。
type SwapIter[T any] struct {
	items *[]T
	index int
}

// New 从集合起点开始遍历
func New[T any](items *[]T) *SwapIter[T] {
	return &SwapIter[T]{items: items}
}

// HasMore 是否还有未访问的元素
func (it *SwapIter[T]) HasMore() bool {
	return it.index < len(*it.items)
}

// Index 当前游标位置
func (it *SwapIter[T]) Index() int {
	return it.index
}

// Next 以 swap-remove 取出游标处元素：原末尾元素填入空位，集合缩短 1。
// 返回被取出的元素，以及指向剩余兄弟集合的指针。
func (it *SwapIter[T]) Next() (T, *[]T) {
	s := *it.items
	last := len(s) - 1
	elem := s[it.index]
	s[it.index] = s[last]
	var zero T
	s[last] = zero
	*it.items = s[:last]
	return elem, it.items
}

// Restore 将元素追加回集合，再与取出时空出的位置交换，然后前进游标
func (it *SwapIter[T]) Restore(elem T) {
	s := append(*it.items, elem)
	last := len(s) - 1
	s[it.index], s[last] = s[last], s[it.index]
	*it.items = s
	it.index++
}

// ForEach 依次取出每个元素调用 fn，fn 返回后放回
func ForEach[T any](items *[]T, fn func(elem T, siblings *[]T)) {
	it := New(items)
	for it.HasMore() {
		elem, siblings := it.Next()
		fn(elem, siblings)
		it.Restore(elem)
	}
}
