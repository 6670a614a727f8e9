package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// JsonNullString 是一個 sql.NullString 的包裝類型，用於自訂 JSON (un)marshalling。
type JsonNullString struct {
	sql.NullString
}

// NullStringFrom 用非空字串建立有效的 JsonNullString，空字串視為 null
func NullStringFrom(s string) JsonNullString {
	return JsonNullString{sql.NullString{String: s, Valid: s != ""}}
}

// MarshalJSON 為 JsonNullString 實現 json.Marshaler 介面。
func (jns JsonNullString) MarshalJSON() ([]byte, error) {
	if !jns.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(jns.String)
}

// UnmarshalJSON 為 JsonNullString 實現 json.Unmarshaler 介面。
func (jns *JsonNullString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		jns.String, jns.Valid = "", false
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		jns.String, jns.Valid = "", false
		return fmt.Errorf("JsonNullString: 期望 JSON 字串或 null，但得到 '%s': %w", string(data), err)
	}
	jns.String, jns.Valid = s, true
	return nil
}

// JsonNullInt64 是一個 sql.NullInt64 的包裝類型，用於自訂 JSON (un)marshalling。
type JsonNullInt64 struct {
	sql.NullInt64
}

// NullInt64From 建立有效的 JsonNullInt64
func NullInt64From(i int64) JsonNullInt64 {
	return JsonNullInt64{sql.NullInt64{Int64: i, Valid: true}}
}

// MarshalJSON 為 JsonNullInt64 實現 json.Marshaler 介面。
func (jni JsonNullInt64) MarshalJSON() ([]byte, error) {
	if !jni.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(jni.Int64)
}

// UnmarshalJSON 為 JsonNullInt64 實現 json.Unmarshaler 介面。
func (jni *JsonNullInt64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		jni.Int64, jni.Valid = 0, false
		return nil
	}
	var i int64
	if err := json.Unmarshal(data, &i); err != nil {
		jni.Int64, jni.Valid = 0, false
		return fmt.Errorf("JsonNullInt64: 期望 JSON 整數或 null，但得到 '%s': %w", string(data), err)
	}
	jni.Int64, jni.Valid = i, true
	return nil
}
