package dashboard

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/gonglijing/shellydash/internal/models"
	"github.com/gonglijing/shellydash/internal/payload"
)

// SeriesPoint 一条记录在选定字段上的投影
// Values 只含解析成功的字段；键缺失即表示该字段在这条记录中 Absent，
// 序列化时靠省略键位表达缺失，绝不会用零值顶替。
type SeriesPoint struct {
	Timestamp time.Time
	Values    map[string]payload.Value
}

// MarshalJSON 序列化投影点，缺失字段不输出
func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"timestamp":`)
	tsData, err := json.Marshal(p.Timestamp)
	if err != nil {
		return nil, err
	}
	buf.Write(tsData)
	buf.WriteString(`,"values":`)
	valData, err := json.Marshal(p.Values)
	if err != nil {
		return nil, err
	}
	buf.Write(valData)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Project 把历史记录投影为图表序列
// 存储层按最新在前返回记录，这里反转为时间升序（图表从左到右绘制）。
// 每条记录对每个字段独立解析：某字段在某条记录缺失只影响该字段的点，
// 不会把整条记录从序列里剔除；不做插值和补点。
func Project(records []models.PayloadRecord, fields []string) []SeriesPoint {
	points := make([]SeriesPoint, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		record := records[i]
		point := SeriesPoint{
			Timestamp: record.CreatedAt,
			Values:    make(map[string]payload.Value, len(fields)),
		}
		obj, ok := payload.ParseObject([]byte(record.Payload))
		if ok {
			for _, field := range fields {
				if v := payload.Resolve(obj, field); !v.IsAbsent() {
					point.Values[field] = v
				}
			}
		}
		points = append(points, point)
	}
	return points
}

// EffectiveFields 计算实际展示的字段
// 有保存的配置就用配置（原样保序，包括当前报文里已不存在的字段）；
// 否则取发现序列的前 defaultCount 个作为首次访问的默认视图。
func EffectiveFields(stored, discovered []string, defaultCount int) []string {
	if len(stored) > 0 {
		return stored
	}
	if defaultCount <= 0 {
		defaultCount = 3
	}
	if len(discovered) > defaultCount {
		return discovered[:defaultCount]
	}
	return discovered
}
