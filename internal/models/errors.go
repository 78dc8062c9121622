package models

import "fmt"

// DataFormatError 源数据格式错误（输入级致命错误）
type DataFormatError struct {
	Row     int
	Column  string
	Message string
	Err     error
}

func (e *DataFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d column %s: %s: %v", e.Row, e.Column, e.Message, e.Err)
	}
	return fmt.Sprintf("row %d column %s: %s", e.Row, e.Column, e.Message)
}

func (e *DataFormatError) Unwrap() error {
	return e.Err
}
