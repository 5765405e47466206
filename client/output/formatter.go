// Package output 命令行输出格式化
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/pterm/pterm"
)

// Format 输出格式
type Format string

const (
	// FormatJSON JSON格式（默认）
	FormatJSON Format = "json"
	// FormatPretty 美化JSON格式
	FormatPretty Format = "pretty"
	// FormatTable 表格格式
	FormatTable Format = "table"
)

// Formatter 输出格式化器
// 数据写到 writer，提示信息写到 logWriter，避免污染 JSON 输出
type Formatter struct {
	format    Format
	writer    io.Writer
	logWriter io.Writer
	silent    bool
}

// NewFormatter 创建格式化器
func NewFormatter(format Format, writer io.Writer) *Formatter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Formatter{
		format:    format,
		writer:    writer,
		logWriter: os.Stderr,
	}
}

// SetLogWriter 设置提示输出目标（默认 stderr）
func (f *Formatter) SetLogWriter(writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	f.logWriter = writer
}

// SetSilent 设置静默模式
func (f *Formatter) SetSilent(silent bool) {
	f.silent = silent
}

// Print 按格式输出数据
func (f *Formatter) Print(data interface{}) error {
	if f.silent {
		return nil
	}
	switch f.format {
	case FormatPretty:
		return f.printJSON(data, true)
	case FormatTable:
		return f.printTable(data)
	default:
		return f.printJSON(data, false)
	}
}

func (f *Formatter) printJSON(data interface{}, pretty bool) error {
	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := fmt.Fprintln(f.writer, string(out)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// printTable 对象按 Key/Value 两列输出，对象数组按字段列输出，其他类型退回美化 JSON
func (f *Formatter) printTable(data interface{}) error {
	normalized, err := normalize(data)
	if err != nil {
		return err
	}

	var rows pterm.TableData
	switch v := normalized.(type) {
	case map[string]interface{}:
		rows = pterm.TableData{{"Key", "Value"}}
		for _, key := range sortedKeys(v) {
			rows = append(rows, []string{key, formatValue(v[key])})
		}
	case []interface{}:
		columns := extractColumns(v)
		if columns == nil {
			return f.printJSON(data, true)
		}
		rows = pterm.TableData{columns}
		for _, item := range v {
			row := item.(map[string]interface{})
			values := make([]string, len(columns))
			for i, col := range columns {
				values[i] = formatValue(row[col])
			}
			rows = append(rows, values)
		}
	default:
		return f.printJSON(data, true)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).WithWriter(f.writer).Render()
}

// PrintSuccess 打印成功消息
func (f *Formatter) PrintSuccess(message string) {
	if f.silent {
		return
	}
	pterm.Success.WithWriter(f.logWriter).Println(message)
}

// PrintError 打印错误消息，静默模式下也输出
func (f *Formatter) PrintError(err error) {
	pterm.Error.WithWriter(f.logWriter).Println(err.Error())
}

// PrintWarning 打印警告消息
func (f *Formatter) PrintWarning(message string) {
	if f.silent {
		return
	}
	pterm.Warning.WithWriter(f.logWriter).Println(message)
}

// PrintInfo 打印提示消息
func (f *Formatter) PrintInfo(message string) {
	if f.silent {
		return
	}
	pterm.Info.WithWriter(f.logWriter).Println(message)
}

// normalize 经 JSON 往返把任意结构转为 map/slice，表格输出与 JSON 字段名一致
func normalize(data interface{}) (interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal json: %w", err)
	}
	return out, nil
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	case bool:
		return fmt.Sprintf("%t", v)
	case time.Time:
		return v.Format(time.RFC3339)
	case nil:
		return "-"
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// extractColumns 对象数组的全部字段，按首次出现顺序；元素不全是对象时返回 nil
func extractColumns(items []interface{}) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, item := range items {
		row, ok := item.(map[string]interface{})
		if !ok {
			return nil
		}
		for _, key := range sortedKeys(row) {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}
	if columns == nil {
		columns = []string{}
	}
	return columns
}
