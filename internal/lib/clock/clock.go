// Package clock предоставляет источник текущего времени,
// чтобы проверку открытости объявлений можно было тестировать детерминированно.
package clock

import "time"

// Clock возвращает текущий момент времени.
type Clock interface {
	Now() time.Time
}

// System использует системные часы.
type System struct{}

// Now возвращает текущее время в UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed всегда возвращает один и тот же момент.
type Fixed time.Time

// Now возвращает зафиксированный момент.
func (f Fixed) Now() time.Time {
	return time.Time(f)
}
