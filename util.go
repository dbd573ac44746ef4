package main

import (
	"crypto/rand"
	"fmt"
	"math"
)

// roomCodeAlphabet omits letters that read ambiguously on small screens.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"

const roomCodeLen = 6

// roomCodeByteLimit is the largest multiple of the alphabet size that fits in
// a byte; random bytes at or above it are discarded so every letter is equally likely.
const roomCodeByteLimit = 256 - 256%len(roomCodeAlphabet)

// GenerateRoomCode returns a random code like "QWERTY"
func GenerateRoomCode() (string, error) {
	code := make([]byte, 0, roomCodeLen)
	buf := make([]byte, roomCodeLen*2)
	for len(code) < roomCodeLen {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("room code: %w", err)
		}
		for _, b := range buf {
			if int(b) >= roomCodeByteLimit {
				continue
			}
			code = append(code, roomCodeAlphabet[int(b)%len(roomCodeAlphabet)])
			if len(code) == roomCodeLen {
				break
			}
		}
	}
	return string(code), nil
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// round1 rounds to one decimal place for compact wire values
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
