package source

import (
	"slices"
	"sync"
)

type StringID uint32

const NoStringID StringID = 0

// Interner даёт строкам плотные ID. Безопасен для параллельного доступа:
// несколько воркеров драйвера могут интернировать одновременно.
type Interner struct {
	mu    sync.RWMutex
	byID  []string            // индекс -> строка (byID[0] = "" для NoStringID)
	index map[string]StringID // строка -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},               // NoStringID → пустая строка
		index: map[string]StringID{"": 0}, // сохраняем явное соответствие
	}
}

// Intern вставляет строку в интернер и возвращает её ID.
// Если строка уже есть, возвращает её ID.
func (i *Interner) Intern(s string) StringID {
	i.mu.RLock()
	id, ok := i.index[s]
	i.mu.RUnlock()
	if ok {
		return id
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	// Могли проиграть гонку за запись
	if id, ok := i.index[s]; ok {
		return id
	}

	// Создаём собственную копию строки, чтобы не зависеть от исходного буфера.
	cpy := string([]byte(s))
	id = StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// InternBytes вставляет байты в интернер и возвращает ID строки.
// Если строка уже есть, возвращает её ID.
func (i *Interner) InternBytes(b []byte) StringID {
	return i.Intern(string(b))
}

// Lookup возвращает строку по ID.
// Если ID не валиден, возвращает пустую строку и false.
func (i *Interner) Lookup(id StringID) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup возвращает строку по ID.
// Если ID не валиден, паникует.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

// Has проверяет, валиден ли ID.
func (i *Interner) Has(id StringID) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return int(id) < len(i.byID)
}

// Len возвращает количество строк в интернере.
// NoStringID тоже учитывается. Не может быть меньше 1.
func (i *Interner) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byID)
}

// Snapshot возвращает копию всех строк в интернере.
func (i *Interner) Snapshot() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.byID)
}
