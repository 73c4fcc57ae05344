package rule

import (
	"context"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/robertkrimen/otto"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ProcFunc 是文本节点的后处理函数，ctx为本次求值的上下文
type ProcFunc func(ctx context.Context, s string) (string, error)

var ErrUnknownProc = errors.New("unknown proc")

// 上下文结束时通过otto的Interrupt抛出，用于中断正在执行的脚本
var errProcInterrupted = errors.New("proc script interrupted")

// 以js:开头的后处理名称，其余部分作为脚本在otto虚拟机中执行，文本通过变量value传入
const jsProcPrefix = "js:"

var procs = struct {
	sync.RWMutex
	m map[string]ProcFunc
}{
	m: map[string]ProcFunc{
		"upcase":     pure(strings.ToUpper),
		"downcase":   pure(strings.ToLower),
		"strip":      pure(strings.TrimSpace),
		"squish":     pure(squish),
		"capitalize": pure(capitalize),
		"swapcase":   pure(swapcase),
		"title": pure(func(s string) string {
			return cases.Title(language.Und).String(s)
		}),
	},
}

// RegisterProc 注册或替换一个具名后处理函数
func RegisterProc(name string, fn ProcFunc) {
	procs.Lock()
	defer procs.Unlock()
	procs.m[name] = fn
}

// KnownProc 判断后处理名称是否可用，js脚本需要能够通过编译
func KnownProc(name string) bool {
	if script, ok := strings.CutPrefix(name, jsProcPrefix); ok {
		_, err := otto.New().Compile("", script)
		return err == nil
	}

	procs.RLock()
	defer procs.RUnlock()
	_, ok := procs.m[name]
	return ok
}

func lookupProc(name string) (ProcFunc, error) {
	if script, ok := strings.CutPrefix(name, jsProcPrefix); ok {
		return jsProc(script), nil
	}

	procs.RLock()
	fn, ok := procs.m[name]
	procs.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProc, "%q", name)
	}
	return fn, nil
}

/*
输入一段js脚本，输出一个后处理函数

该方法用于在otto虚拟机中执行脚本，上下文取消或超时后通过Interrupt中断脚本，返回ctx.Err()
*/
func jsProc(script string) ProcFunc {
	return func(ctx context.Context, s string) (result string, err error) {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrapf(err, "run proc script %q", script)
		}

		vm := otto.New()
		if err := vm.Set("value", s); err != nil {
			return "", errors.Wrap(err, "bind proc value")
		}

		vm.Interrupt = make(chan func(), 1)
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				vm.Interrupt <- func() {
					panic(errProcInterrupted)
				}
			case <-done:
			}
		}()

		defer func() {
			if r := recover(); r != nil {
				if r != errProcInterrupted {
					panic(r)
				}
				result, err = "", errors.Wrapf(ctx.Err(), "run proc script %q", script)
			}
		}()

		v, err := vm.Run(script)
		if err != nil {
			return "", errors.Wrapf(err, "run proc script %q", script)
		}
		return v.String(), nil
	}
}

func pure(fn func(string) string) ProcFunc {
	return func(_ context.Context, s string) (string, error) {
		return fn(s), nil
	}
}

func squish(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// 首字母大写，其余小写
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func swapcase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsUpper(r):
			return unicode.ToLower(r)
		case unicode.IsLower(r):
			return unicode.ToUpper(r)
		}
		return r
	}, s)
}
