package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the tables in dependency order.  Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS guests (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		first_name  VARCHAR(100) NOT NULL,
		last_name   VARCHAR(100) NOT NULL,
		email       VARCHAR(255) NOT NULL,
		phone       VARCHAR(50)  NOT NULL DEFAULT '',
		id_number   VARCHAR(100) NOT NULL DEFAULT '',
		address     VARCHAR(500) NOT NULL DEFAULT '',
		created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_guests_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS rooms (
		room_number     VARCHAR(20)   NOT NULL PRIMARY KEY,
		room_type       VARCHAR(20)   NOT NULL,
		status          VARCHAR(20)   NOT NULL DEFAULT 'AVAILABLE',
		price_per_night DECIMAL(10,2) NOT NULL,
		description     VARCHAR(1000) NOT NULL DEFAULT '',
		max_occupancy   INT           NOT NULL DEFAULT 1
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		guest_id       BIGINT UNSIGNED NOT NULL,
		room_number    VARCHAR(20)     NOT NULL,
		check_in_date  DATE            NOT NULL,
		check_out_date DATE            NOT NULL,
		status         VARCHAR(20)     NOT NULL,
		total_price    DECIMAL(10,2)   NOT NULL,
		notes          TEXT,
		created_at     DATETIME        NOT NULL,
		updated_at     DATETIME        NOT NULL,
		KEY idx_reservations_room (room_number, check_in_date),
		KEY idx_reservations_status (status),
		CONSTRAINT fk_reservations_guest FOREIGN KEY (guest_id) REFERENCES guests(id),
		CONSTRAINT fk_reservations_room FOREIGN KEY (room_number) REFERENCES rooms(room_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS payments (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		reservation_id BIGINT UNSIGNED NOT NULL,
		amount         DECIMAL(10,2)   NOT NULL,
		payment_method VARCHAR(20)     NOT NULL,
		payment_date   DATETIME        NOT NULL,
		status         VARCHAR(20)     NOT NULL,
		transaction_id VARCHAR(100)    NOT NULL DEFAULT '',
		notes          TEXT,
		KEY idx_payments_reservation (reservation_id),
		CONSTRAINT fk_payments_reservation FOREIGN KEY (reservation_id) REFERENCES reservations(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS services (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(100)  NOT NULL,
		description VARCHAR(500)  NOT NULL DEFAULT '',
		price       DECIMAL(10,2) NOT NULL,
		category    VARCHAR(30)   NOT NULL,
		is_active   TINYINT(1)    NOT NULL DEFAULT 1
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reservation_services (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		reservation_id BIGINT UNSIGNED NOT NULL,
		service_id     BIGINT UNSIGNED NOT NULL,
		quantity       INT             NOT NULL,
		requested_at   DATETIME        NOT NULL,
		status         VARCHAR(20)     NOT NULL,
		total_price    DECIMAL(10,2)   NOT NULL,
		notes          TEXT,
		KEY idx_rs_reservation (reservation_id),
		CONSTRAINT fk_rs_reservation FOREIGN KEY (reservation_id) REFERENCES reservations(id),
		CONSTRAINT fk_rs_service FOREIGN KEY (service_id) REFERENCES services(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing table.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
