package models

// Preset is a commonly used PyInstaller argument offered by the preset
// dropdown. Placeholders in angle brackets are meant to be edited.
type Preset struct {
	Flag        string
	Description string
}

var Presets = []Preset{
	{Flag: "--version-file <FILE>", Description: "Attach a version information file"},
	{Flag: "--manifest <FILE or XML>", Description: "Attach a manifest file"},
	{Flag: "--uac-admin", Description: "Request administrator privileges"},
	{Flag: "--hidden-import <MODULE>", Description: "Name an implicitly imported module"},
	{Flag: "--exclude-module <MODULE>", Description: "Exclude a module"},
	{Flag: "--add-binary <SRC;DEST>", Description: "Add a binary file"},
	{Flag: "--splash <IMAGE>", Description: "Show a splash screen"},
	{Flag: "--debug all", Description: "Verbose debug mode"},
	{Flag: "--strip", Description: "Strip symbol tables (smaller output)"},
	{Flag: "--noupx", Description: "Disable UPX compression"},
	{Flag: "--runtime-tmpdir <PATH>", Description: "Runtime temporary directory"},
}

// PresetFlags lists the preset flags in display order.
func PresetFlags() []string {
	flags := make([]string, len(Presets))
	for i, p := range Presets {
		flags[i] = p.Flag
	}
	return flags
}

func PresetDescription(flag string) (string, bool) {
	for _, p := range Presets {
		if p.Flag == flag {
			return p.Description, true
		}
	}
	return "", false
}
