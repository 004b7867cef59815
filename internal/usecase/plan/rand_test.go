package plan

import "testing"

func TestRandDeterminism(t *testing.T) {
	a := NewRand(12345)
	b := NewRand(12345)
	for i := 0; i < 50; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("ожидали одинаковый поток для одинакового сида на шаге %d", i)
		}
	}
}

func TestRandRange(t *testing.T) {
	r := NewRand(7)
	for i := 0; i < 1000; i++ {
		v := r.Next()
		if v < 0 || v >= 1 {
			t.Fatalf("ожидали значение в [0,1), получили %f", v)
		}
	}
}

func TestRandIntN(t *testing.T) {
	r := NewRand(42)
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		v := r.IntN(5)
		if v < 0 || v >= 5 {
			t.Fatalf("ожидали значение в [0,5), получили %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 5 {
		t.Fatalf("ожидали все 5 значений за 200 бросков, получили %d", len(seen))
	}
	if r.IntN(0) != 0 {
		t.Fatalf("ожидали 0 при max=0")
	}
}

func TestRandStringSeedStable(t *testing.T) {
	a := NewRandString("proj-1-2024-01-08")
	b := NewRandString("proj-1-2024-01-08")
	for i := 0; i < 20; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("ожидали одинаковый поток для одинаковой строки")
		}
	}
	if HashSeed("proj-1-2024-01-08") != HashSeed("proj-1-2024-01-08") {
		t.Fatalf("ожидали стабильный хеш")
	}
}

func TestRandSeedsDiverge(t *testing.T) {
	a := NewRand(1)
	b := NewRand(2)
	same := true
	for i := 0; i < 10; i++ {
		if a.Next() != b.Next() {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("ожидали расхождение потоков для разных сидов")
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	r := NewRand(99)
	in := []int64{1, 2, 3, 4, 5, 6, 7}
	out := r.ShuffleInt64s(in)
	if len(out) != len(in) {
		t.Fatalf("ожидали ту же длину")
	}
	counts := make(map[int64]int)
	for _, v := range out {
		counts[v]++
	}
	for _, v := range in {
		if counts[v] != 1 {
			t.Fatalf("ожидали перестановку, элемент %d встречается %d раз", v, counts[v])
		}
	}
	if in[0] != 1 || in[6] != 7 {
		t.Fatalf("исходный срез не должен меняться")
	}
}
