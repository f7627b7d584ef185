package main

// farmRemap translates codepoints to the filenames the legacy image farm
// expects. Keycap digits and '#' carry the combining-keycap suffix there, and
// the two couple emoji were reshot as fully composed ZWJ sequences. These are
// historical exceptions, not rules; do not derive them.
var farmRemap = map[string]string{
	"0023": "0023-20e3",
	"0030": "0030-20e3",
	"0031": "0031-20e3",
	"0032": "0032-20e3",
	"0033": "0033-20e3",
	"0034": "0034-20e3",
	"0035": "0035-20e3",
	"0036": "0036-20e3",
	"0037": "0037-20e3",
	"0038": "0038-20e3",
	"0039": "0039-20e3",
	"1f48f": "1f469-200d-2764-200d-1f48b-200d-1f468",
	"1f491": "1f469-200d-2764-200d-1f468",
}

func remapFarmCodepoint(cp string) string {
	if mapped, ok := farmRemap[cp]; ok {
		return mapped
	}
	return cp
}
