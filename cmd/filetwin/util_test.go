package main

import "testing"

func TestParseXSizeMinBound(t *testing.T) {
	size, isMax, err := parseXSize("10K")
	if err != nil {
		t.Fatal(err)
	}
	if isMax {
		t.Fatalf("expected min-size form without leading +")
	}
	if size != 10*1024 {
		t.Fatalf("expected 10240 bytes, got %d", size)
	}
}

func TestParseXSizeMaxBound(t *testing.T) {
	size, isMax, err := parseXSize("+5M")
	if err != nil {
		t.Fatal(err)
	}
	if !isMax {
		t.Fatalf("expected max-size form with leading +")
	}
	if size != 5*1024*1024 {
		t.Fatalf("expected 5MiB in bytes, got %d", size)
	}
}

func TestParseXSizePlainNumber(t *testing.T) {
	size, isMax, err := parseXSize("512")
	if err != nil {
		t.Fatal(err)
	}
	if isMax {
		t.Fatalf("expected min-size form")
	}
	if size != 512 {
		t.Fatalf("expected 512 bytes, got %d", size)
	}
}

func TestParseXSizeRejectsEmpty(t *testing.T) {
	if _, _, err := parseXSize(""); err == nil {
		t.Fatalf("expected an error for an empty --xsize value")
	}
}

func TestParseXSizeRejectsGarbage(t *testing.T) {
	if _, _, err := parseXSize("not-a-size"); err == nil {
		t.Fatalf("expected an error for an unparseable --xsize value")
	}
}
