package model

import (
	"errors"
	"math"
	"sync/atomic"
)

// MaxID - верхняя граница id, совпадает с колонкой INT(11) в MySQL
const MaxID int64 = math.MaxInt32

var ErrorIDsExhausted = errors.New("todo ids exhausted")

// IDAllocator выдает идентификаторы записей. Отметка (mark) - максимальный
// выданный или увиденный id, она никогда не уменьшается.
type IDAllocator struct {
	mark atomic.Int64
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next возвращает mark+1 и сдвигает отметку. После MaxID отметка не двигается.
func (a *IDAllocator) Next() (int64, error) {
	for {
		cur := a.mark.Load()
		if cur >= MaxID {
			return 0, ErrorIDsExhausted
		}
		if a.mark.CompareAndSwap(cur, cur+1) {
			return cur + 1, nil
		}
	}
}

// AdvanceTo поднимает отметку до candidate, если он больше текущей.
func (a *IDAllocator) AdvanceTo(candidate int64) {
	for {
		cur := a.mark.Load()
		if candidate <= cur {
			return
		}
		if a.mark.CompareAndSwap(cur, candidate) {
			return
		}
	}
}

func (a *IDAllocator) Mark() int64 {
	return a.mark.Load()
}
