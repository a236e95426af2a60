// PCG64 wraps the PCG generator from math/rand/v2.
//
// The PCG algorithm is designed by Melissa O'Neill.

package core

import (
	"crypto/rand"
	"encoding/binary"
	r2 "math/rand/v2"
)

// PCG64 亂數產生器
type PCG64 struct {
	src *r2.PCG
	rnd *r2.Rand
}

// NewPCG64 使用加密隨機來源產生 seed。
func NewPCG64() *PCG64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return NewPCG64WithSeed(int64(binary.LittleEndian.Uint64(b[:]) >> 1))
}

// NewPCG64WithSeed 以指定 seed 建立 PCG64；seed 經 splitmix64 展開成兩個 64-bit 狀態。
func NewPCG64WithSeed(seed int64) *PCG64 {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	src := r2.NewPCG(splitmix64(x), splitmix64(x^0xDA942042E4DD58B5))
	return &PCG64{src: src, rnd: r2.New(src)}
}

func (r *PCG64) Uint64() uint64 {
	return r.src.Uint64()
}

// IntN 產出 [0,n) 的整數（無偏），若 n <= 0 回傳 -1
func (r *PCG64) IntN(n int) int {
	if n <= 0 {
		return -1
	}
	return r.rnd.IntN(n)
}

// Snapshot 取得當下內部狀態
func (r *PCG64) Snapshot() ([]byte, error) {
	return r.src.MarshalBinary()
}

// Restore 恢復內部狀態
func (r *PCG64) Restore(data []byte) error {
	return r.src.UnmarshalBinary(data)
}

// splitmix64 將輸入值混洗成新的 64-bit 狀態，用於種子展開。
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
