package model

import (
	"fmt"
	"time"
)

const (
	CaptchaOperandMin = 1
	CaptchaOperandMax = 20
)

var CaptchaOperators = []string{"+", "-", "×"}

type Captcha struct {
	ID        string    `db:"id"`
	Num1      int       `db:"num1"`
	Num2      int       `db:"num2"`
	Operator  string    `db:"operator"`
	Answer    int       `db:"answer"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// NewCaptcha builds a challenge from two operands and an operator.
// Subtraction puts the larger operand first so answers are never negative.
func NewCaptcha(id string, a, b int, op string, now time.Time, ttl time.Duration) (*Captcha, error) {
	if a < CaptchaOperandMin || a > CaptchaOperandMax || b < CaptchaOperandMin || b > CaptchaOperandMax {
		return nil, fmt.Errorf("captcha operands must be within [%d,%d]", CaptchaOperandMin, CaptchaOperandMax)
	}

	var answer int
	switch op {
	case "+":
		answer = a + b
	case "-":
		if a < b {
			a, b = b, a
		}
		answer = a - b
	case "×":
		answer = a * b
	default:
		return nil, fmt.Errorf("unknown captcha operator %q", op)
	}

	now = now.UTC()
	return &Captcha{
		ID:        id,
		Num1:      a,
		Num2:      b,
		Operator:  op,
		Answer:    answer,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

func (c *Captcha) Question() string {
	return fmt.Sprintf("%d %s %d = ?", c.Num1, c.Operator, c.Num2)
}

func (c *Captcha) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
