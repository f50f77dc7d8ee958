package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Path 快照位置：本地文件或mongo集合
type Path struct {
	File string
	DB   string
	Coll string
}

// NewPath 解析 {fspath} 或 {db}.{col}
// 已存在的文件、或没有可用的mongo时，一律视为文件
func NewPath(filePathOrColl string, hasMongo bool) (*Path, error) {
	filePathOrColl = strings.TrimSpace(filePathOrColl)
	if filePathOrColl == "" {
		return nil, fmt.Errorf("empty path")
	}
	// 检查filePathOrColl是否作为文件存在
	if _, err := os.Stat(filePathOrColl); err == nil || !hasMongo {
		return &Path{
			File: filePathOrColl,
		}, nil
	}
	splitted := strings.Split(filePathOrColl, ".")
	if len(splitted) != 2 || splitted[0] == "" || splitted[1] == "" {
		return nil, fmt.Errorf("dbDotColl is invalid: %s", filePathOrColl)
	}
	return &Path{
		DB:   splitted[0],
		Coll: splitted[1],
	}, nil
}

func (p *Path) IsFile() bool {
	return p.File != ""
}

func (p *Path) GetDb() string {
	return p.DB
}

func (p *Path) GetColl() string {
	return p.Coll
}

func (p *Path) String() string {
	if p.File != "" {
		// return absolute path
		path, err := filepath.Abs(p.File)
		if err != nil {
			return p.File
		}
		return path
	}
	return p.DB + "." + p.Coll
}
