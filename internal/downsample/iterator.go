package downsample

// Iterator 单向只读游标（与 sql.Rows 的用法一致）：
//
//	for it.Next() {
//		p := it.Value()
//	}
//	if err := it.Err(); err != nil { ... }
//
// 游标不可重置，只能从前往后消费一次
type Iterator[T any] interface {
	Next() bool
	Value() T
	Err() error
}

// SliceIterator 基于内存切片的 Iterator
type SliceIterator[T any] struct {
	items []T
	pos   int
}

// NewSliceIterator 创建切片游标
func NewSliceIterator[T any](items []T) *SliceIterator[T] {
	return &SliceIterator[T]{items: items, pos: -1}
}

func (s *SliceIterator[T]) Next() bool {
	if s.pos+1 >= len(s.items) {
		s.pos = len(s.items)
		return false
	}
	s.pos++
	return true
}

func (s *SliceIterator[T]) Value() T {
	return s.items[s.pos]
}

func (s *SliceIterator[T]) Err() error { return nil }

type mapIterator[T, U any] struct {
	src Iterator[T]
	fn  func(T) U
}

// Map 在游标上逐个转换元素，不做缓冲
func Map[T, U any](src Iterator[T], fn func(T) U) Iterator[U] {
	return &mapIterator[T, U]{src: src, fn: fn}
}

func (m *mapIterator[T, U]) Next() bool { return m.src.Next() }
func (m *mapIterator[T, U]) Value() U   { return m.fn(m.src.Value()) }
func (m *mapIterator[T, U]) Err() error { return m.src.Err() }
