// Package robot drives the wheeled base, distance sensor and servo.
//
// Controller is the command surface used by sessions and the CLI. It checks
// arguments, logs every command, and forwards it to a Driver. Two drivers
// exist: SerialDriver talks to the motor board over a serial line, and
// DryRunDriver only logs.
//
// # Wire Protocol
//
// Each command is one line of ASCII: a verb followed by integer arguments,
// separated by single spaces and terminated by '\n'. The board answers with
// one line:
//
//	OK            command done
//	OK <value>    command done, with a reading (DIST)
//	ERR <message> command refused
//
// Verbs: FWD, BWD, LEFT, RIGHT, STOP, SPEED <dps>, ORBIT <degrees> <radius_cm>,
// DIST, SERVO <degrees>.
package robot
