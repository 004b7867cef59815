package domain

import "testing"

func TestHasCriticalFlags(t *testing.T) {
	if HasCriticalFlags([]string{FlagContainsLinks, FlagManyLinks}) {
		t.Fatalf("справочные флаги не должны считаться критичными")
	}
	if !HasCriticalFlags([]string{FlagContainsLinks, FlagVoteManipulation}) {
		t.Fatalf("ожидали критичный флаг vote_manipulation")
	}
	if HasCriticalFlags(nil) {
		t.Fatalf("пустой список не критичен")
	}
}
