package security

import (
	"path/filepath"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Programs that only read state.
var lowRiskPrograms = map[string]bool{
	"ls": true, "cat": true, "head": true, "tail": true, "less": true, "more": true,
	"grep": true, "egrep": true, "fgrep": true, "rg": true, "ag": true,
	"pwd": true, "echo": true, "printf": true, "wc": true, "which": true, "whereis": true,
	"type": true, "whoami": true, "id": true, "date": true, "uname": true, "hostname": true,
	"df": true, "du": true, "stat": true, "file": true, "tree": true, "sort": true,
	"uniq": true, "cut": true, "tr": true, "nl": true, "diff": true, "cmp": true,
	"printenv": true, "basename": true, "dirname": true, "realpath": true, "readlink": true,
	"true": true, "false": true, "test": true, "[": true, "jq": true, "ps": true,
	"uptime": true, "free": true, "md5sum": true, "sha1sum": true, "sha256sum": true,
	"shasum": true, "column": true, "man": true, "cd": true,
}

// Programs that destroy data, affect privileges, or affect the whole system.
var highRiskPrograms = map[string]bool{
	"rm": true, "rmdir": true, "shred": true, "dd": true, "mkfs": true, "fdisk": true,
	"parted": true, "wipefs": true, "shutdown": true, "reboot": true, "halt": true,
	"poweroff": true, "sudo": true, "su": true, "doas": true, "chown": true, "chgrp": true,
	"kill": true, "killall": true, "pkill": true, "systemctl": true, "service": true,
	"launchctl": true, "crontab": true, "iptables": true, "ufw": true, "useradd": true,
	"userdel": true, "usermod": true, "passwd": true, "mount": true, "umount": true,
	"diskutil": true, "eval": true, "nc": true, "ncat": true,
}

var shellInterpreters = map[string]bool{
	"sh": true, "bash": true, "zsh": true, "dash": true, "ksh": true, "fish": true,
}

// Wrappers that run the command given in their arguments.
var commandWrappers = map[string]bool{
	"env": true, "nohup": true, "nice": true, "time": true, "command": true,
	"exec": true, "xargs": true, "timeout": true, "stdbuf": true, "setsid": true,
	"ionice": true, "watch": true,
}

// Wrapper options that take the following argument as their value.
var wrapperValueOptions = map[string][]string{
	"env":     {"-u", "--unset", "-C", "--chdir"},
	"nice":    {"-n", "--adjustment"},
	"timeout": {"-s", "--signal", "-k", "--kill-after"},
	"xargs": {
		"-n", "--max-args", "-L", "--max-lines", "-P", "--max-procs", "-I",
		"-d", "--delimiter", "-a", "--arg-file", "-E", "--eof", "-s", "--max-chars",
	},
	"stdbuf": {"-i", "--input", "-o", "--output", "-e", "--error"},
	"exec":   {"-a"},
	"ionice": {"-c", "--class", "-n", "--classdata", "-p", "--pid"},
	"watch":  {"-n", "--interval", "-d"},
}

// Variables that name a program, script or library that another program loads.
var execEnvVars = map[string]bool{
	"PAGER": true, "MANPAGER": true, "GIT_PAGER": true, "SYSTEMD_PAGER": true,
	"EDITOR": true, "VISUAL": true, "GIT_EDITOR": true, "GIT_SEQUENCE_EDITOR": true,
	"GIT_EXTERNAL_DIFF": true, "GIT_SSH": true, "GIT_SSH_COMMAND": true, "GIT_ASKPASS": true,
	"LESSOPEN": true, "LESSCLOSE": true, "BROWSER": true, "MANOPT": true,
	"LD_PRELOAD": true, "LD_LIBRARY_PATH": true, "DYLD_INSERT_LIBRARIES": true,
	"BASH_ENV": true, "ENV": true, "PROMPT_COMMAND": true, "PERL5OPT": true,
	"PYTHONSTARTUP": true, "NODE_OPTIONS": true, "RIPGREP_CONFIG_PATH": true,
}

var programRules map[string]func(args []string) CommandRiskLevel

// programRules is filled in init because classifyFind refers back to it
// through classifyArgs.
func init() {
	programRules = map[string]func(args []string) CommandRiskLevel{
		"git":      classifyGit,
		"find":     classifyFind,
		"sed":      classifySed,
		"chmod":    classifyChmod,
		"sort":     classifySort,
		"uniq":     classifyUniq,
		"man":      classifyMan,
		"rg":       classifyRg,
		"ag":       classifyAg,
		"less":     classifyLess,
		"tree":     classifyTree,
		"date":     classifyDate,
		"hostname": classifyHostname,
	}
}

// ClassifyCommandRisk assigns a risk level to a shell command.
//
// The command is parsed as POSIX shell. Every simple command found anywhere in
// it, including pipelines, lists and substitutions, is classified by program
// name and the highest level wins. Wrappers such as env, timeout and xargs
// and the commands run by find -exec are classified as the command they run.
// Options that make a read-only program write a file are Medium, and options
// or variables that make it run another program are High. Writing redirects
// are Medium, raw device targets are High, and piping into a shell
// interpreter is High. Unknown programs are Medium and an unparseable command
// is High.
func ClassifyCommandRisk(command string) CommandRiskLevel {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return RiskHigh
	}

	risk := RiskLow
	raise := func(r CommandRiskLevel) {
		if r > risk {
			risk = r
		}
	}

	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.CallExpr:
			args, static := callArgs(n)
			if !static {
				raise(RiskHigh)
				return true
			}
			raise(classifyArgs(args))
		case *syntax.Assign:
			if n.Name != nil && isExecEnvVar(n.Name.Value) {
				raise(RiskHigh)
			}
		case *syntax.CmdSubst, *syntax.ProcSubst, *syntax.FuncDecl:
			raise(RiskMedium)
		case *syntax.Redirect:
			raise(classifyRedirect(n))
		case *syntax.BinaryCmd:
			if n.Op == syntax.Pipe || n.Op == syntax.PipeAll {
				if call, ok := n.Y.Cmd.(*syntax.CallExpr); ok {
					if args, static := callArgs(call); static && len(args) > 0 {
						if shellInterpreters[programName(unwrap(args))] {
							raise(RiskHigh)
						}
					}
				}
			}
		}
		return true
	})
	return risk
}

// canonicalCommand reprints command in the shell printer's layout so that
// spacing and quoting differences do not change it.
func canonicalCommand(command string) (string, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := syntax.NewPrinter().Print(&sb, file); err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}

// CommandPrograms lists the program names invoked by command, in order.
func CommandPrograms(command string) ([]string, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return nil, err
	}
	var programs []string
	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok {
			return true
		}
		args, static := callArgs(call)
		if !static {
			programs = append(programs, "")
			return true
		}
		if args = unwrap(args); len(args) > 0 {
			programs = append(programs, programName(args))
		}
		return true
	})
	return programs, nil
}

func classifyArgs(args []string) CommandRiskLevel {
	args, assigned := unwrapAssigns(args)
	for _, name := range assigned {
		if isExecEnvVar(name) {
			return RiskHigh
		}
	}
	if len(args) == 0 {
		return RiskLow
	}
	prog := programName(args)
	if highRiskPrograms[prog] || strings.HasPrefix(prog, "mkfs.") {
		return RiskHigh
	}
	if rule, ok := programRules[prog]; ok {
		return rule(args[1:])
	}
	if shellInterpreters[prog] {
		if i := slices.Index(args, "-c"); i >= 0 && i+1 < len(args) {
			return max(RiskMedium, ClassifyCommandRisk(args[i+1]))
		}
		return RiskMedium
	}
	if lowRiskPrograms[prog] {
		return RiskLow
	}
	return RiskMedium
}

// unwrap drops variable assignments and wrapper programs such as env or nohup.
func unwrap(args []string) []string {
	rest, _ := unwrapAssigns(args)
	return rest
}

// unwrapAssigns is unwrap that also returns the names of the variables
// assigned on the way to the wrapped command.
func unwrapAssigns(args []string) (rest, assigned []string) {
	for len(args) > 0 {
		if isAssignment(args[0]) {
			assigned = append(assigned, args[0][:strings.IndexByte(args[0], '=')])
			args = args[1:]
			continue
		}
		prog := programName(args)
		if !commandWrappers[prog] {
			return args, assigned
		}
		args = skipWrapperOptions(prog, args[1:])
		switch {
		case prog == "timeout" && len(args) > 0:
			args = args[1:] // duration
		case prog == "watch":
			// watch joins its arguments into one shell command.
			args = strings.Fields(strings.Join(args, " "))
		}
	}
	return args, assigned
}

// skipWrapperOptions returns the arguments after the options of wrapper prog.
func skipWrapperOptions(prog string, args []string) []string {
	valued := wrapperValueOptions[prog]
	for len(args) > 0 {
		a := args[0]
		switch {
		case a == "--":
			return args[1:]
		case prog == "env" && (a == "-S" || a == "--split-string"):
			if len(args) < 2 {
				return nil
			}
			return append(strings.Fields(args[1]), args[2:]...)
		case prog == "env" && strings.HasPrefix(a, "--split-string="):
			return append(strings.Fields(strings.TrimPrefix(a, "--split-string=")), args[1:]...)
		case prog == "env" && strings.HasPrefix(a, "-S"):
			return append(strings.Fields(a[2:]), args[1:]...)
		case slices.Contains(valued, a):
			if len(args) < 2 {
				return nil
			}
			args = args[2:]
		case strings.HasPrefix(a, "-"):
			args = args[1:]
		default:
			return args
		}
	}
	return args
}

func programName(args []string) string {
	return filepath.Base(args[0])
}

func isAssignment(s string) bool {
	i := strings.IndexByte(s, '=')
	return i > 0 && !strings.ContainsAny(s[:i], "/-.")
}

func isExecEnvVar(name string) bool {
	return execEnvVars[name] || strings.HasPrefix(name, "GIT_CONFIG_")
}

// isShortOptionGroup reports whether a is a group of single-letter options like -nr.
func isShortOptionGroup(a string) bool {
	return len(a) > 1 && a[0] == '-' && a[1] != '-'
}

// shortOptions returns the option letters of group a. Letters after the first
// option listed in valued are that option's attached value and are dropped.
func shortOptions(a, valued string) string {
	if !isShortOptionGroup(a) {
		return ""
	}
	for j := 1; j < len(a); j++ {
		if strings.IndexByte(valued, a[j]) >= 0 {
			return a[1 : j+1]
		}
	}
	return a[1:]
}

func classifyGit(args []string) CommandRiskLevel {
	floor := RiskLow
	sub := ""
	var rest []string
global:
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-C" || a == "--git-dir" || a == "--work-tree" || a == "--namespace":
			i++
		case a == "-c" || a == "--config-env":
			// Configuration can name pagers, editors and diff drivers.
			floor = RiskMedium
			i++
		case strings.HasPrefix(a, "--config-env="):
			floor = RiskMedium
		case strings.HasPrefix(a, "--exec-path="):
			return RiskHigh
		case strings.HasPrefix(a, "-"):
		default:
			sub, rest = a, args[i+1:]
			break global
		}
	}
	return max(floor, classifyGitSubcommand(sub, rest))
}

func classifyGitSubcommand(sub string, rest []string) CommandRiskLevel {
	switch sub {
	case "grep":
		for _, a := range rest {
			if strings.HasPrefix(a, "--open-files-in-pager") || strings.ContainsRune(shortOptions(a, "efABCmO"), 'O') {
				return RiskHigh
			}
		}
		return RiskLow
	case "status", "log", "diff", "show", "blame", "ls-files", "rev-parse", "describe",
		"shortlog", "reflog", "whatchanged", "":
		if hasFlagPrefix(rest, "--output") {
			return RiskMedium
		}
		return RiskLow
	case "branch":
		if hasAnyFlag(rest, "-D", "-d", "--delete", "-m", "-M", "--move") {
			return highIf(hasAnyFlag(rest, "-D"))
		}
		if hasAnyFlag(rest, "-l", "--list") || !hasOperand(rest) {
			return RiskLow
		}
		return RiskMedium
	case "remote", "tag", "stash", "config":
		if len(rest) == 0 || hasAnyFlag(rest, "-v", "--verbose", "-l", "--list") || (sub == "stash" && rest[0] == "list") {
			return RiskLow
		}
		return RiskMedium
	case "push":
		return highIf(hasAnyFlag(rest, "-f", "--force", "--force-with-lease", "--delete", "--mirror"))
	case "reset":
		return highIf(hasAnyFlag(rest, "--hard"))
	case "clean", "filter-branch", "filter-repo":
		return RiskHigh
	case "checkout", "restore":
		return highIf(hasAnyFlag(rest, "-f", "--force", "."))
	default:
		return RiskMedium
	}
}

// Actions of find that run a command on each match.
var findExecActions = []string{"-exec", "-execdir", "-ok", "-okdir"}

func classifyFind(args []string) CommandRiskLevel {
	risk := RiskLow
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-delete":
			return RiskHigh
		case slices.Contains(findExecActions, a):
			end := i + 1
			for end < len(args) && !isFindTerminator(args[end]) {
				end++
			}
			risk = max(risk, RiskMedium, classifyArgs(args[i+1:end]))
			i = end
		case a == "-fprint" || a == "-fprint0" || a == "-fprintf" || a == "-fls":
			risk = max(risk, RiskMedium)
		}
	}
	return risk
}

func isFindTerminator(a string) bool {
	return a == ";" || a == `\;` || a == "+"
}

func classifySed(args []string) CommandRiskLevel {
	risk := RiskLow
	var scripts, operands []string
	explicit := false
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			operands = append(operands, args[i+1:]...)
			i = len(args)
		case a == "--in-place" || strings.HasPrefix(a, "--in-place="):
			risk = max(risk, RiskMedium)
		case a == "--expression":
			if i+1 < len(args) {
				i++
				scripts = append(scripts, args[i])
			}
			explicit = true
		case strings.HasPrefix(a, "--expression="):
			scripts = append(scripts, strings.TrimPrefix(a, "--expression="))
			explicit = true
		case a == "--file" || strings.HasPrefix(a, "--file="):
			// A script file can hold anything.
			risk = max(risk, RiskMedium)
			explicit = true
			if a == "--file" {
				i++
			}
		case a == "--line-length":
			i++
		case strings.HasPrefix(a, "--"):
		case isShortOptionGroup(a):
			for j := 1; j < len(a); j++ {
				c := a[j]
				if c == 'i' {
					// -i[SUFFIX]
					risk = max(risk, RiskMedium)
					break
				}
				if c == 'e' || c == 'f' || c == 'l' {
					val := a[j+1:]
					if val == "" && i+1 < len(args) {
						i++
						val = args[i]
					}
					if c == 'e' {
						scripts = append(scripts, val)
						explicit = true
					} else if c == 'f' {
						risk = max(risk, RiskMedium)
						explicit = true
					}
					break
				}
			}
		default:
			operands = append(operands, a)
		}
	}
	if !explicit && len(operands) > 0 {
		scripts = append(scripts, operands[0])
	}
	for _, script := range scripts {
		risk = max(risk, sedScriptRisk(script))
	}
	return risk
}

// sedScriptRisk scans a sed script for commands that write files (w, W and
// the w flag of s) or run commands (e and the e flag of s).
func sedScriptRisk(script string) CommandRiskLevel {
	if script == "$" {
		// Expanded at run time.
		return RiskMedium
	}
	risk := RiskLow
	n := len(script)
	for i := 0; i < n; {
		c := script[i]
		switch {
		case strings.IndexByte(" \t\n;{}!,$~+", c) >= 0, c >= '0' && c <= '9':
			i++
		case c == '#':
			i = sedLineEnd(script, i)
		case c == '/' || c == '\\':
			if c == '\\' {
				if i+1 >= n {
					return risk
				}
				i++
			}
			i = sedSkipDelimited(script, i+1, script[i])
			for i < n && (script[i] == 'I' || script[i] == 'M') {
				i++
			}
		case c == 'e':
			return RiskHigh
		case c == 'w' || c == 'W':
			risk = max(risk, RiskMedium)
			i = sedLineEnd(script, i)
		case c == 's' || c == 'y':
			if i+1 >= n {
				return risk
			}
			delim := script[i+1]
			i = sedSkipDelimited(script, i+2, delim)
			i = sedSkipDelimited(script, i, delim)
			if c == 'y' {
				continue
			}
			for i < n && strings.IndexByte("gpiImM0123456789", script[i]) >= 0 {
				i++
			}
			if i < n && script[i] == 'e' {
				return RiskHigh
			}
			if i < n && script[i] == 'w' {
				risk = max(risk, RiskMedium)
				i = sedLineEnd(script, i)
			}
		case c == 'a' || c == 'i' || c == 'c' || c == 'r' || c == 'R':
			// Text or a file name runs to the end of the line.
			i = sedLineEnd(script, i)
		case c == 'b' || c == 't' || c == 'T' || c == ':':
			for i < n && script[i] != ';' && script[i] != '\n' {
				i++
			}
		default:
			i++
		}
	}
	return risk
}

func sedLineEnd(s string, i int) int {
	if j := strings.IndexByte(s[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(s)
}

// sedSkipDelimited returns the index just past the next unescaped delim.
func sedSkipDelimited(s string, i int, delim byte) int {
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
		case delim:
			return i + 1
		default:
			i++
		}
	}
	return len(s)
}

func classifySort(args []string) CommandRiskLevel {
	for _, a := range args {
		switch {
		case strings.HasPrefix(a, "--compress-program"):
			return RiskHigh
		case strings.HasPrefix(a, "--output"), strings.ContainsRune(shortOptions(a, "ktSTo"), 'o'):
			return RiskMedium
		}
	}
	return RiskLow
}

// classifyUniq treats a second operand, the output file, as a write.
func classifyUniq(args []string) CommandRiskLevel {
	operands := 0
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			operands += len(args) - i - 1
			i = len(args)
		case slices.Contains([]string{"-f", "-s", "-w", "--skip-fields", "--skip-chars", "--check-chars"}, a):
			i++
		case a == "-":
			operands++
		case strings.HasPrefix(a, "-"):
		default:
			operands++
		}
	}
	if operands > 1 {
		return RiskMedium
	}
	return RiskLow
}

func classifyMan(args []string) CommandRiskLevel {
	for _, a := range args {
		if strings.HasPrefix(a, "--pager") || strings.HasPrefix(a, "--html") || strings.HasPrefix(a, "--config-file") ||
			strings.ContainsAny(shortOptions(a, "CMPSsemLprERH"), "PHC") {
			return RiskHigh
		}
	}
	return RiskLow
}

func classifyRg(args []string) CommandRiskLevel {
	for _, a := range args {
		if a == "--pre" || strings.HasPrefix(a, "--pre=") {
			return RiskHigh
		}
	}
	return RiskLow
}

func classifyAg(args []string) CommandRiskLevel {
	if hasFlagPrefix(args, "--pager") {
		return RiskHigh
	}
	return RiskLow
}

func classifyLess(args []string) CommandRiskLevel {
	for _, a := range args {
		if strings.HasPrefix(a, "--log-file") || strings.HasPrefix(a, "--LOG-FILE") ||
			strings.HasPrefix(a, "--lesskey") || strings.ContainsAny(shortOptions(a, "bhjpPtTxyzoOk#"), "oOk") {
			return RiskMedium
		}
	}
	return RiskLow
}

func classifyTree(args []string) CommandRiskLevel {
	if hasAnyFlag(args, "-o", "-R") {
		return RiskMedium
	}
	return RiskLow
}

func classifyDate(args []string) CommandRiskLevel {
	for _, a := range args {
		if strings.HasPrefix(a, "--set") || strings.ContainsRune(shortOptions(a, "dfIrs"), 's') {
			return RiskHigh
		}
	}
	return RiskLow
}

func classifyHostname(args []string) CommandRiskLevel {
	if hasOperand(args) || hasFlagPrefix(args, "-F", "--file") {
		return RiskHigh
	}
	return RiskLow
}

func classifyChmod(args []string) CommandRiskLevel {
	for _, a := range args {
		if a == "-R" || a == "--recursive" || strings.Contains(a, "777") || strings.Contains(a, "+s") {
			return RiskHigh
		}
	}
	return RiskMedium
}

func classifyRedirect(r *syntax.Redirect) CommandRiskLevel {
	switch r.Op {
	case syntax.RdrOut, syntax.AppOut, syntax.ClbOut, syntax.RdrAll, syntax.AppAll:
	default:
		return RiskLow
	}
	target, static := wordText(r.Word)
	if !static {
		return RiskMedium
	}
	switch {
	case target == "/dev/null", target == "/dev/stdout", target == "/dev/stderr":
		return RiskLow
	case strings.HasPrefix(target, "/dev/"):
		return RiskHigh
	default:
		return RiskMedium
	}
}

func hasAnyFlag(args []string, flags ...string) bool {
	for _, a := range args {
		if slices.Contains(flags, a) {
			return true
		}
	}
	return false
}

// hasFlagPrefix reports whether any argument starts with one of prefixes.
func hasFlagPrefix(args []string, prefixes ...string) bool {
	for _, a := range args {
		for _, p := range prefixes {
			if strings.HasPrefix(a, p) {
				return true
			}
		}
	}
	return false
}

func hasOperand(args []string) bool {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return true
		}
	}
	return false
}

func highIf(cond bool) CommandRiskLevel {
	if cond {
		return RiskHigh
	}
	return RiskMedium
}

// callArgs returns the literal arguments of call. static is false when any
// word depends on expansion and its value cannot be known before running.
func callArgs(call *syntax.CallExpr) (args []string, static bool) {
	args = make([]string, 0, len(call.Args))
	for _, w := range call.Args {
		text, ok := wordText(w)
		if !ok {
			if len(args) == 0 {
				return nil, false
			}
			// Dynamic arguments after the program name keep the program known.
			text = "$"
		}
		args = append(args, text)
	}
	return args, true
}

func wordText(w *syntax.Word) (string, bool) {
	if w == nil {
		return "", false
	}
	var sb strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				lit, ok := inner.(*syntax.Lit)
				if !ok {
					return "", false
				}
				sb.WriteString(lit.Value)
			}
		default:
			return "", false
		}
	}
	return sb.String(), true
}
