package gamedata

import (
	"errors"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
)

// LoadTreasureTable reads and validates a treasure reference file of the form
//
//	{"groups": {"Area": ["stem", ...]}, "zones": {"stem": {"name", "offset", "quantity"}}}
func LoadTreasureTable(path string) (*TreasureTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file treasureJSON
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return treasureFromJSON(file)
}

// LoadItemTable reads and validates an item name file of the form
//
//	{"ids": {"4097": "Potion", ...}}
func LoadItemTable(path string) (*ItemTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file itemJSON
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return itemsFromJSON(file)
}

// EnsureTreasureTable rejects empty or directory paths before loading.
func EnsureTreasureTable(path string) (*TreasureTable, error) {
	if err := checkDataPath(path); err != nil {
		return nil, err
	}
	return LoadTreasureTable(path)
}

// EnsureItemTable rejects empty or directory paths before loading.
func EnsureItemTable(path string) (*ItemTable, error) {
	if err := checkDataPath(path); err != nil {
		return nil, err
	}
	return LoadItemTable(path)
}

func checkDataPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("empty data file path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("data path %s is a directory", path)
	}
	return nil
}
