// Package downsample 实现 LTTB（Largest-Triangle-Three-Buckets）降采样，
// 同时支持内存切片和只能前向读取一次的流式输入
package downsample

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidThreshold 目标点数 <= 0
	ErrInvalidThreshold = errors.New("downsample: threshold must be positive")
	// ErrInvalidCount 流式输入的总数为负
	ErrInvalidCount = errors.New("downsample: total count must not be negative")
)

// ValueFunc 返回点的 y 值。x 轴固定使用点在序列中的下标
// 无法解析的值由调用方按 0 处理
type ValueFunc[T any] func(T) float64

// Downsample 把按时间升序排列的点降到 threshold 个
//
// len(points) <= threshold 时原样返回；否则结果长度恰好为 threshold，
// 首尾点保持不变
func Downsample[T any](points []T, threshold int, y ValueFunc[T]) ([]T, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, threshold)
	}
	if len(points) <= threshold {
		return points, nil
	}
	return reduce[T](NewSliceIterator(points), len(points), threshold, y)
}

// DownsampleStream 流式版本，输出与 Downsample 相同
//
// totalCount 必须是游标实际会产出的点数，分桶边界在读取第一个点之前就确定了。
// 游标只读取一次，内存中最多保留当前桶和下一个桶；
// totalCount <= threshold 时同样会读完整个游标并原样返回
func DownsampleStream[T any](it Iterator[T], totalCount, threshold int, y ValueFunc[T]) ([]T, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, threshold)
	}
	if totalCount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, totalCount)
	}
	return reduce(it, totalCount, threshold, y)
}

type sample[T any] struct {
	point T
	x     float64
	y     float64
}

// bucketReader 按下标把游标切成连续的桶
type bucketReader[T any] struct {
	it   Iterator[T]
	y    ValueFunc[T]
	idx  int // 下一个要读取的下标
	last *sample[T]
}

func (r *bucketReader[T]) read() (sample[T], bool) {
	if !r.it.Next() {
		return sample[T]{}, false
	}
	p := r.it.Value()
	s := sample[T]{point: p, x: float64(r.idx), y: r.y(p)}
	r.idx++
	r.last = &s
	return s, true
}

// fill 读取下标 < end 的点
func (r *bucketReader[T]) fill(end int) []sample[T] {
	var bucket []sample[T]
	for r.idx < end {
		s, ok := r.read()
		if !ok {
			break
		}
		bucket = append(bucket, s)
	}
	return bucket
}

func (r *bucketReader[T]) drain() {
	for {
		if _, ok := r.read(); !ok {
			return
		}
	}
}

// reduce 降采样主流程，内存切片和流式输入共用
func reduce[T any](it Iterator[T], n, threshold int, y ValueFunc[T]) ([]T, error) {
	if n <= threshold {
		var all []T
		for it.Next() {
			all = append(all, it.Value())
		}
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("downsample: read input: %w", err)
		}
		if all == nil {
			all = []T{}
		}
		return all, nil
	}

	r := &bucketReader[T]{it: it, y: y}
	first, ok := r.read()
	if !ok {
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("downsample: read input: %w", err)
		}
		return []T{}, nil
	}

	out := make([]T, 0, threshold)
	out = append(out, first.point)

	buckets := threshold - 2
	if buckets > 0 {
		// 第 i 个桶覆盖下标 [bound(i), bound(i+1))，bound(buckets) = n-1，
		// 最后一个“桶”只包含末尾点
		bound := func(i int) int {
			if i > buckets {
				return n
			}
			return 1 + i*(n-2)/buckets
		}

		a := first
		cur := r.fill(bound(1))
		next := r.fill(bound(2))
		for i := 0; i < buckets; i++ {
			if len(cur) > 0 {
				cx, cy := average(next, a)
				b := pick(cur, a, cx, cy)
				out = append(out, b.point)
				a = b
			}
			cur = next
			next = r.fill(bound(i + 3))
		}
	}

	r.drain()
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("downsample: read input: %w", err)
	}
	if threshold > 1 && r.last != nil && r.idx > 1 {
		out = append(out, r.last.point)
	}
	return out, nil
}

// average 桶的平均点；桶为空（输入比 totalCount 短）时退化为锚点
func average[T any](bucket []sample[T], anchor sample[T]) (float64, float64) {
	if len(bucket) == 0 {
		return anchor.x, anchor.y
	}
	var sx, sy float64
	for _, s := range bucket {
		sx += s.x
		sy += s.y
	}
	l := float64(len(bucket))
	return sx / l, sy / l
}

// pick 选出与锚点 A、平均点 C 构成三角形面积最大的点，面积相同取第一个
func pick[T any](bucket []sample[T], a sample[T], cx, cy float64) sample[T] {
	if len(bucket) == 1 {
		return bucket[0]
	}
	best := bucket[0]
	maxArea := -1.0
	for _, b := range bucket {
		area := math.Abs((a.x-cx)*(b.y-a.y) - (a.x-b.x)*(cy-a.y))
		if area > maxArea {
			maxArea = area
			best = b
		}
	}
	return best
}
