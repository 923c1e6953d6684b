package utils

import (
	"testing"
	"time"
)

func TestNowJST(t *testing.T) {
	now := NowJST()
	if now.Location().String() != "Asia/Tokyo" && now.Location().String() != "JST" {
		t.Errorf("NowJST() location = %s, want Asia/Tokyo or JST", now.Location().String())
	}
}

func TestToJST(t *testing.T) {
	utc := time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)
	jst := ToJST(utc)
	if jst.Hour() != 9 {
		t.Errorf("ToJST(midnight UTC).Hour() = %d, want 9", jst.Hour())
	}
	if !jst.Equal(utc) {
		t.Error("ToJST must not change the instant")
	}
}

func TestParseDateJST(t *testing.T) {
	d, err := ParseDateJST("2026-02-19")
	if err != nil {
		t.Fatalf("ParseDateJST failed: %v", err)
	}
	if d.Year() != 2026 || d.Month() != 2 || d.Day() != 19 {
		t.Errorf("ParseDateJST = %v, want 2026-02-19", d)
	}
}

func TestFormatDateJST(t *testing.T) {
	d := time.Date(2026, 2, 19, 10, 30, 0, 0, JST)
	result := FormatDateJST(d)
	if result != "2026-02-19" {
		t.Errorf("FormatDateJST = %s, want 2026-02-19", result)
	}
}

func TestFormatDateJSTCrossesMidnight(t *testing.T) {
	// 23:00 UTC on the 19th is already the 20th in Tokyo.
	d := time.Date(2026, 2, 19, 23, 0, 0, 0, time.UTC)
	if got := FormatDateJST(d); got != "2026-02-20" {
		t.Errorf("FormatDateJST = %s, want 2026-02-20", got)
	}
}

func TestFormatDateTimeJST(t *testing.T) {
	d := time.Date(2026, 2, 19, 10, 30, 45, 0, JST)
	result := FormatDateTimeJST(d)
	if result != "2026-02-19 10:30:45 JST" {
		t.Errorf("FormatDateTimeJST = %s", result)
	}
}
