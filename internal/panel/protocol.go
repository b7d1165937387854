package panel

// Banner identifies the simulated aircraft in reply to CmdIdentify.
const Banner = "We are a Cessna 172 SP?\n"

// Command is a single-byte host command.
type Command byte

const (
	CmdActivate   Command = '!'
	CmdDeactivate Command = '.'
	CmdIdentify   Command = '?'
	CmdReboot     Command = 'r'
)

// ParseCommand decodes a host byte. Unknown bytes return ok=false.
func ParseCommand(b byte) (Command, bool) {
	switch c := Command(b); c {
	case CmdActivate, CmdDeactivate, CmdIdentify, CmdReboot:
		return c, true
	}
	return 0, false
}

func (c Command) String() string {
	switch c {
	case CmdActivate:
		return "activate"
	case CmdDeactivate:
		return "deactivate"
	case CmdIdentify:
		return "identify"
	case CmdReboot:
		return "reboot"
	}
	return "unknown"
}

// AppendFrame appends the wire encoding of r: tag '=' value '\n'.
func AppendFrame(dst []byte, r Report) []byte {
	dst = append(dst, r.Tag...)
	return append(dst, '=', byte(r.Value), '\n')
}

// Frame returns the wire encoding of r.
func (r Report) Frame() []byte {
	return AppendFrame(make([]byte, 0, len(r.Tag)+3), r)
}
