package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка, запасной вариант
	UnknownCode Code = 0

	// Находки линтера (300-999)
	LintExplicitDerefCall Code = 301
	LintNeedlessBorrow    Code = 302
	LintRefBindingToRef   Code = 303
	LintExplicitAutoDeref Code = 304

	// Бандлы и ввод-вывод (1000-1999)
	BundleUnreadable   Code = 1001
	BundleSchema       Code = 1002
	BundleStale        Code = 1003
	BundleCorrupt      Code = 1004
	BundleSourceGone   Code = 1005
	BundleSpanRange    Code = 1006
	BundleBadReference Code = 1007

	// Конфигурация и baseline (2000-2999)
	ConfigUnreadable  Code = 2001
	ConfigParse       Code = 2002
	ConfigVersion     Code = 2003
	ConfigUnknownLint Code = 2004
	ConfigBadValue    Code = 2005
	BaselineCorrupt   Code = 2100

	// Драйвер (3000-3999)
	DriverInternal Code = 3001
	DriverNoInput  Code = 3002
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown error",

	LintExplicitDerefCall: "explicit deref method call",
	LintNeedlessBorrow:    "needless borrow",
	LintRefBindingToRef:   "reference binds to a reference",
	LintExplicitAutoDeref: "deref done by auto-deref",

	BundleUnreadable:   "bundle cannot be read",
	BundleSchema:       "unsupported bundle schema",
	BundleStale:        "bundle is stale",
	BundleCorrupt:      "bundle is corrupt",
	BundleSourceGone:   "bundle source file missing",
	BundleSpanRange:    "bundle span out of range",
	BundleBadReference: "bundle reference out of range",

	ConfigUnreadable:  "config cannot be read",
	ConfigParse:       "config cannot be parsed",
	ConfigVersion:     "tool version rejected by config",
	ConfigUnknownLint: "config names an unknown lint",
	ConfigBadValue:    "config value out of range",
	BaselineCorrupt:   "baseline cannot be parsed",

	DriverInternal: "internal error",
	DriverNoInput:  "no bundles found",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 300 && ic < 1000:
		return fmt.Sprintf("LINT%04d", ic)
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("BND%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("DRV%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
