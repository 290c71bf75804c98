package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/metageek-llc/ManagedWifi/internal/config"
)

type Cmd struct {
}

func (c Cmd) OutJson(w io.Writer, data interface{}) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func (c Cmd) OutYaml(w io.Writer, data interface{}) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(out))
	return err
}

// pad formats args with verb in a column of width space, left aligned when
// space is negative.
func pad(verb string, space int, args ...interface{}) string {
	return fmt.Sprintf("%"+strconv.Itoa(space)+verb, args...)
}

func (c Cmd) OutTable(w io.Writer, data interface{}, tmpl string) error {
	funcMap := template.FuncMap{
		"ps": func(space int, args ...interface{}) string {
			return pad("s", space, args...)
		},
		"pi": func(space int, args ...interface{}) string {
			return pad("d", space, args...)
		},
		"pf": func(space int, args ...interface{}) string {
			return pad("g", space, args...)
		},
		"pb": func(space int, v bool) string {
			if v {
				return pad("s", space, "yes")
			}
			return pad("s", space, "-")
		},
	}
	t, err := template.New("main").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}

func (c Cmd) Out(w io.Writer, data interface{}, format string, tmpl string) error {
	switch format {
	case config.FormatJSON:
		return c.OutJson(w, data)
	case config.FormatYAML:
		return c.OutYaml(w, data)
	default:
		return c.OutTable(w, data, tmpl)
	}
}
