package dashboard

import (
	"fmt"
	"sync"

	"github.com/gonglijing/shellydash/internal/models"
	"github.com/gonglijing/shellydash/internal/payload"
)

// State 视图会话状态
type State int

const (
	StateLoading State = iota
	StateReady
	StateSaving
)

// String 返回状态字符串
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// ConfigStore 配置持久化能力，由调用方注入
type ConfigStore interface {
	SaveViewConfig(deviceID string, fields []string) error
}

// ConfigStoreFunc 函数适配器
type ConfigStoreFunc func(deviceID string, fields []string) error

// SaveViewConfig 实现 ConfigStore
func (f ConfigStoreFunc) SaveViewConfig(deviceID string, fields []string) error {
	return f(deviceID, fields)
}

// ViewModel 单设备仪表盘视图模型
// Loading -> Ready（数据加载完成）；Ready -> Saving -> Ready（保存配置）。
// 保存失败时保留用户正在编辑的选择供重试，不回滚到上次持久化的状态。
type ViewModel struct {
	deviceID      string
	store         ConfigStore
	defaultFields int

	mu         sync.Mutex
	state      State
	discovered []string
	visible    []string
	latest     *payload.Object
	history    []models.PayloadRecord
	saveErr    error
}

// NewViewModel 创建视图模型
func NewViewModel(deviceID string, store ConfigStore) *ViewModel {
	return &ViewModel{
		deviceID:      deviceID,
		store:         store,
		defaultFields: 3,
		state:         StateLoading,
	}
}

// SetDefaultFieldCount 设置无配置时默认展示的字段数
func (vm *ViewModel) SetDefaultFieldCount(n int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if n > 0 {
		vm.defaultFields = n
	}
}

// Initialize 加载数据并进入 Ready
// 字段发现只看最新一条记录：老记录里出现过、最新报文里消失的字段
// 不会进入可选列表（已保存选择中的此类字段仍按 Absent 渲染）。
func (vm *ViewModel) Initialize(latest *models.PayloadRecord, history []models.PayloadRecord, stored []string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.discovered = []string{}
	vm.latest = nil
	if latest != nil {
		if obj, ok := payload.ParseObject([]byte(latest.Payload)); ok {
			vm.latest = obj
			vm.discovered = payload.Flatten(obj)
		}
	}

	vm.history = history
	vm.visible = append([]string(nil), EffectiveFields(stored, vm.discovered, vm.defaultFields)...)
	if vm.visible == nil {
		vm.visible = []string{}
	}
	vm.saveErr = nil
	vm.state = StateReady
}

// State 当前状态
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// DiscoveredFields 最新报文中发现的可选字段
// 返回的切片始终非 nil，空列表序列化为 []。
func (vm *ViewModel) DiscoveredFields() []string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]string, len(vm.discovered))
	copy(out, vm.discovered)
	return out
}

// VisibleFields 当前内存中的展示字段选择
// 与 DiscoveredFields 一样保证非 nil。
func (vm *ViewModel) VisibleFields() []string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]string, len(vm.visible))
	copy(out, vm.visible)
	return out
}

// ToggleField 翻转字段的选中状态
// 已选字段移除时其余顺序不变；新增字段追加到末尾。纯本地操作。
func (vm *ViewModel) ToggleField(path string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	for i, field := range vm.visible {
		if field == path {
			vm.visible = append(vm.visible[:i], vm.visible[i+1:]...)
			return
		}
	}
	vm.visible = append(vm.visible, path)
}

// SaveConfig 持久化当前选择
// 成功后内存与持久化状态一致；失败时错误通过返回值和 LastSaveError
// 暴露，选择保持不变。
func (vm *ViewModel) SaveConfig() error {
	vm.mu.Lock()
	if vm.state != StateReady {
		state := vm.state
		vm.mu.Unlock()
		return fmt.Errorf("cannot save in state %s", state)
	}
	vm.state = StateSaving
	deviceID := vm.deviceID
	fields := append([]string(nil), vm.visible...)
	store := vm.store
	vm.mu.Unlock()

	var err error
	if store == nil {
		err = fmt.Errorf("no config store")
	} else {
		err = store.SaveViewConfig(deviceID, fields)
	}

	vm.mu.Lock()
	vm.state = StateReady
	vm.saveErr = err
	vm.mu.Unlock()
	return err
}

// LastSaveError 最近一次保存的错误，成功后清空
func (vm *ViewModel) LastSaveError() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.saveErr
}

// CurrentValue 字段在最新记录中的值
func (vm *ViewModel) CurrentValue(path string) payload.Value {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return payload.Resolve(vm.latest, path)
}

// Series 按当前选择投影历史记录
// 每次调用基于当前 visible 重新投影，切换字段后无需重新加载数据。
func (vm *ViewModel) Series() []SeriesPoint {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return Project(vm.history, vm.visible)
}
