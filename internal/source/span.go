package source

import (
	"fmt"
)

// ExpansionID identifies the expansion context a span belongs to.
// NoExpansion means the text was written by the user; любое другое значение
// ссылается на запись в таблице экспансий FileSet.
type ExpansionID uint32

const NoExpansion ExpansionID = 0

type Span struct {
	File      FileID
	Start     uint32 // в байтах включительно
	End       uint32 // в байтах не включительно
	Expansion ExpansionID
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

// FromExpansion reports whether the span covers compiler-generated text.
func (s Span) FromExpansion() bool {
	return s.Expansion != NoExpansion
}

// SameContext reports whether both spans belong to the same expansion context.
func (s Span) SameContext(other Span) bool {
	return s.Expansion == other.Expansion
}

func (s Span) String() string {
	if s.Expansion != NoExpansion {
		return fmt.Sprintf("%d:%d-%d@e%d", s.File, s.Start, s.End, s.Expansion)
	}
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// ShiftLeft сдвигает спан влево на n байт. Сдвиг за начало файла
// возвращает спан без изменений.
func (s Span) ShiftLeft(n uint32) Span {
	if n > s.Start {
		return s
	}
	return Span{
		File:      s.File,
		Start:     s.Start - n,
		End:       s.End - n,
		Expansion: s.Expansion,
	}
}

// ShiftRight сдвигает спан вправо на n байт. Сдвиг больше длины спана
// возвращает спан без изменений.
func (s Span) ShiftRight(n uint32) Span {
	if n > s.Len() {
		return s
	}
	return Span{
		File:      s.File,
		Start:     s.Start + n,
		End:       s.End + n,
		Expansion: s.Expansion,
	}
}

// ZeroideToStart схлопывает спан в пустой на его начале.
func (s Span) ZeroideToStart() Span {
	s.End = s.Start
	return s
}

// ZeroideToEnd схлопывает спан в пустой на его конце.
func (s Span) ZeroideToEnd() Span {
	s.Start = s.End
	return s
}
