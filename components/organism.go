package components

// Sex of a person.
type Sex uint8

const (
	Male Sex = iota
	Female
)

func (s Sex) String() string {
	if s == Female {
		return "female"
	}
	return "male"
}

// FoodType distinguishes the two goods of the economy.
type FoodType uint8

const (
	Apple FoodType = iota
	Orange
)

func (f FoodType) String() string {
	if f == Orange {
		return "orange"
	}
	return "apple"
}

// Person bundles identity, age and fertility.
type Person struct {
	ID        uint32
	Sex       Sex
	Age       int // ticks alive
	Fertile   bool
	BirthTick uint64
	FatherID  uint32 // 0 for founders
	MotherID  uint32
}

// Hunger per food type. Grows every tick and is only reduced by eating.
type Hunger struct {
	Apples  float32
	Oranges float32
}

// Of returns the hunger for one food type.
func (h Hunger) Of(t FoodType) float32 {
	if t == Orange {
		return h.Oranges
	}
	return h.Apples
}

// Reduce lowers the hunger for one food type, flooring at zero.
func (h *Hunger) Reduce(t FoodType, amount float32) {
	p := &h.Apples
	if t == Orange {
		p = &h.Oranges
	}
	*p -= amount
	if *p < 0 {
		*p = 0
	}
}

// Stock is the food a person carries. Never negative.
type Stock struct {
	Apples  int
	Oranges int
}

// Of returns the held amount of one food type.
func (s Stock) Of(t FoodType) int {
	if t == Orange {
		return s.Oranges
	}
	return s.Apples
}

// Add changes the held amount of one food type by n.
func (s *Stock) Add(t FoodType, n int) {
	if t == Orange {
		s.Oranges += n
	} else {
		s.Apples += n
	}
}

// Total returns the number of held units across both types.
func (s Stock) Total() int {
	return s.Apples + s.Oranges
}

// Halve removes half of each good (integer division) and returns it.
func (s *Stock) Halve() Stock {
	half := Stock{Apples: s.Apples / 2, Oranges: s.Oranges / 2}
	s.Apples -= half.Apples
	s.Oranges -= half.Oranges
	return half
}

// Take empties the stock and returns what it held.
func (s *Stock) Take() Stock {
	out := *s
	*s = Stock{}
	return out
}

// Merge adds o to the stock.
func (s *Stock) Merge(o Stock) {
	s.Apples += o.Apples
	s.Oranges += o.Oranges
}
