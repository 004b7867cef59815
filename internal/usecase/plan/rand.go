package plan

// Rand — детерминированный генератор псевдослучайных чисел на базе
// 32-битного миксера mulberry32. Криптографических свойств нет и не нужно:
// важна только воспроизводимость потока на любой платформе.
// Каждый экземпляр независим, глобального состояния нет.
type Rand struct {
	state uint32
}

// NewRand создаёт генератор из целочисленного сида.
func NewRand(seed int64) *Rand {
	return &Rand{state: uint32(seed)}
}

// NewRandString создаёт генератор из строкового сида через полиномиальный
// хеш. Коллизии между разными строками допустимы, хеш стабилен между
// запусками и платформами.
func NewRandString(seed string) *Rand {
	return &Rand{state: HashSeed(seed)}
}

// HashSeed сводит строку к 32-битному сиду.
func HashSeed(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}

// Next возвращает число в [0,1).
func (r *Rand) Next() float64 {
	r.state += 0x6D2B79F5
	z := r.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	z ^= z >> 14
	return float64(z) / 4294967296.0
}

// IntN возвращает число в [0,max). При max <= 0 возвращает 0.
func (r *Rand) IntN(max int) int {
	if max <= 0 {
		return 0
	}
	return int(r.Next() * float64(max))
}

// ShuffleInts возвращает перемешанную копию среза.
func (r *Rand) ShuffleInts(items []int) []int {
	out := append([]int(nil), items...)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ShuffleInt64s возвращает перемешанную копию среза идентификаторов.
func (r *Rand) ShuffleInt64s(items []int64) []int64 {
	out := append([]int64(nil), items...)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ShuffleStrings возвращает перемешанную копию среза строк.
func (r *Rand) ShuffleStrings(items []string) []string {
	out := append([]string(nil), items...)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
