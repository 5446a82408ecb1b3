package db

import "fmt"

// schemaTemplate is the database schema initialization SQL. The single
// %s slot is the record access method name.
//
// Session permissions scope every operation to the owning user, so a
// record user can never read or write another user's sessions even
// with hand-crafted queries.
const schemaTemplate = `
    -- ==========================================================================
    -- USER TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS user SCHEMAFULL
        PERMISSIONS
            FOR select WHERE id = $auth.id
            FOR create, update, delete NONE;
    DEFINE FIELD IF NOT EXISTS email ON user TYPE string ASSERT string::is::email($value);
    DEFINE FIELD IF NOT EXISTS name ON user TYPE string;
    DEFINE FIELD IF NOT EXISTS pass ON user TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON user TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS user_email ON user FIELDS email UNIQUE;

    -- ==========================================================================
    -- SESSION TABLE
    -- ==========================================================================
    -- messages is a whole-document list: every sync replaces it in full
    -- (last write wins, single active client per user assumed).
    DEFINE TABLE IF NOT EXISTS session SCHEMAFULL
        PERMISSIONS
            FOR select, create, update, delete WHERE user = $auth.id;
    DEFINE FIELD IF NOT EXISTS title ON session TYPE string;
    DEFINE FIELD IF NOT EXISTS user ON session TYPE record<user> DEFAULT $auth.id;
    DEFINE FIELD IF NOT EXISTS messages ON session TYPE array<object> FLEXIBLE DEFAULT [];
    -- Note: Must REMOVE then DEFINE to ensure FLEXIBLE is set (IF NOT EXISTS won't update existing field)
    REMOVE FIELD IF EXISTS messages.* ON session;
    DEFINE FIELD messages.* ON session TYPE object FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS created_at ON session TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON session TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS session_user ON session FIELDS user;
    DEFINE INDEX IF NOT EXISTS session_updated ON session FIELDS updated_at;

    -- ==========================================================================
    -- RECORD ACCESS (email/password auth)
    -- ==========================================================================
    DEFINE ACCESS IF NOT EXISTS %s ON DATABASE TYPE RECORD
        SIGNUP (
            CREATE user SET
                email = string::lowercase($email),
                name = $name,
                pass = crypto::argon2::generate($pass)
        )
        SIGNIN (
            SELECT * FROM user
            WHERE email = string::lowercase($email)
              AND crypto::argon2::compare(pass, $pass)
        )
        DURATION FOR TOKEN 1h, FOR SESSION 7d;
`

// schemaSQL renders the schema for the configured access method name.
func schemaSQL(access string) string {
	return fmt.Sprintf(schemaTemplate, access)
}
