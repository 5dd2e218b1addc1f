// internal/service/consumeinfo/domain/result.go
package domain

// Code 是统一响应码。所有层边界（存储适配器、应用服务、HTTP）都只返回
// Result，裸 error 不跨组件传播。
type Code string

const (
	CodeSuccess Code = "Success"
	CodeFail    Code = "Fail"
)

// Result 是贯穿各层的统一响应信封：{code, data, msg}。
// 注意"未找到"不是失败：查询不到记录返回 Success + 零值 Data。
type Result[T any] struct {
	Code Code   `json:"code"`
	Data T      `json:"data"`
	Msg  string `json:"msg"`
}

// OK 构造一个成功结果。
func OK[T any](data T, msg string) Result[T] {
	return Result[T]{Code: CodeSuccess, Data: data, Msg: msg}
}

// FailWith 构造一个失败结果，msg 携带可读的失败原因。
func FailWith[T any](msg string) Result[T] {
	return Result[T]{Code: CodeFail, Msg: msg}
}

// Ok 判断结果是否成功。
func (r Result[T]) Ok() bool {
	return r.Code == CodeSuccess
}
